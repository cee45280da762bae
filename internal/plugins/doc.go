// Package plugins provides the built-in di plugins and registers them in a
// plugin.Registry.
//
// Plugins never reach the host directly: processes, the Docker engine, the
// host account database, the gcloud token cache and free-port discovery are
// injected through Deps so that every plugin can be exercised with fakes.
//
// # Plugins
//
//	order  name                      commands
//	0      base                      all
//	10     gcr (disabled)            all
//	400    compose                   all
//	500    workspace-mount           run
//	510    user                      run
//	520    homedir                   run
//	560    google-cloud-credentials  run
//	950    run-config, build-config  run, build
//	960    jupyter                   run
//	980    substitution              all
//	990    validation                all
//	1000   run, build                run, build
package plugins
