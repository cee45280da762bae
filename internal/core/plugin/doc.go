// Package plugin defines the plugin contract and the pipeline that runs a
// document through the selected plugins.
//
// Plugins are registered explicitly in a Registry at startup. Each
// invocation selects a subset (honoring the document's `plugins` directive
// and the command being run), merges the schema fragments of every known
// plugin, and then drives the document through the pipeline:
//
//	DISCOVER → SELECT → AGGREGATE_SCHEMA → POPULATE_DEFAULTS → EXECUTE → CLEANUP
//
// The first three phases happen in Pipeline.Prepare, so that callers can
// declare command-line arguments for the selected plugins before parsing
// them. Plan.Execute performs the rest. Cleanup always runs, in reverse
// order, over every selected plugin, including those that never executed.
//
// # Usage
//
//	reg := plugin.NewRegistry()
//	reg.MustRegister(plugin.Descriptor{Name: "run", Enabled: true, Order: 1000, ...})
//
//	pipeline := plugin.NewPipeline(reg, logger)
//	result, err := pipeline.Run(ctx, plugin.Invocation{
//		Command:   "run",
//		Document:  doc,
//		Variables: variables.FromEnviron(os.Environ()),
//	})
package plugin
