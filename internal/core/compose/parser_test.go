package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const minimalValidSpec = `
services:
  app:
    image: nginx:latest
`

const multiServiceSpec = `
services:
  web:
    image: nginx:latest
    ports:
      - "8080:80"
    environment:
      NGINX_HOST: example.com
    depends_on:
      - api

  api:
    image: myapp:1.0
    command: ["serve", "--port", "9000"]
    entrypoint: ["/bin/app"]
    working_dir: /srv
    user: "1000:1000"
    labels:
      tier: backend
      app: api
    volumes:
      - ./data:/data:ro
      - cache:/cache
      - type: tmpfs
        target: /scratch

volumes:
  cache:
`

const serviceWithBuildSpec = `
services:
  app:
    image: myapp:dev
    build:
      context: ./app
      dockerfile: Dockerfile.prod
      args:
        VERSION: "1.2"
`

// =============================================================================
// Input Validation Tests
// =============================================================================

func TestParseService_EmptyInput(t *testing.T) {
	_, err := ParseService([]byte(""), "/project", "app")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParseService_WhitespaceOnly(t *testing.T) {
	_, err := ParseService([]byte("   \n\t  "), "/project", "app")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParseService_InvalidYAML(t *testing.T) {
	_, err := ParseService([]byte("services:\n  app:\n    image: [unclosed"), "/project", "app")
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestParseService_YAMLNotObject(t *testing.T) {
	_, err := ParseService([]byte("- just\n- a list\n"), "/project", "app")
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

// =============================================================================
// Service Lookup Tests
// =============================================================================

func TestParseService_Minimal(t *testing.T) {
	svc, err := ParseService([]byte(minimalValidSpec), "/project", "app")
	require.NoError(t, err)
	assert.Equal(t, "app", svc.Name)
	assert.Equal(t, "nginx:latest", svc.Image)
	assert.Nil(t, svc.Build)
}

func TestParseService_SingleServiceWithoutName(t *testing.T) {
	svc, err := ParseService([]byte(minimalValidSpec), "/project", "")
	require.NoError(t, err)
	assert.Equal(t, "app", svc.Name)
}

func TestParseService_AmbiguousWithoutName(t *testing.T) {
	_, err := ParseService([]byte(multiServiceSpec), "/project", "")
	assert.ErrorIs(t, err, ErrAmbiguousService)
}

func TestParseService_NotFound(t *testing.T) {
	_, err := ParseService([]byte(minimalValidSpec), "/project", "db")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServiceNotFound))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "services.db", parseErr.Field)
}

// =============================================================================
// Conversion Tests
// =============================================================================

func TestParseService_Ports(t *testing.T) {
	svc, err := ParseService([]byte(multiServiceSpec), "/project", "web")
	require.NoError(t, err)
	require.Len(t, svc.Ports, 1)
	assert.Equal(t, uint32(80), svc.Ports[0].Target)
	assert.Equal(t, "8080", svc.Ports[0].Published)
}

func TestParseService_Environment(t *testing.T) {
	svc, err := ParseService([]byte(multiServiceSpec), "/project", "web")
	require.NoError(t, err)
	require.Contains(t, svc.Environment, "NGINX_HOST")
	require.NotNil(t, svc.Environment["NGINX_HOST"])
	assert.Equal(t, "example.com", *svc.Environment["NGINX_HOST"])
}

func TestParseService_CommandAndEntrypoint(t *testing.T) {
	svc, err := ParseService([]byte(multiServiceSpec), "/project", "api")
	require.NoError(t, err)
	assert.Equal(t, []string{"serve", "--port", "9000"}, svc.Command)
	assert.Equal(t, []string{"/bin/app"}, svc.Entrypoint)
	assert.Equal(t, "/srv", svc.WorkingDir)
	assert.Equal(t, "1000:1000", svc.User)
	assert.Equal(t, map[string]string{"tier": "backend", "app": "api"}, svc.Labels)
}

func TestParseService_Volumes(t *testing.T) {
	svc, err := ParseService([]byte(multiServiceSpec), "/project", "api")
	require.NoError(t, err)
	require.Len(t, svc.Volumes, 3)

	byTarget := map[string]VolumeMount{}
	for _, v := range svc.Volumes {
		byTarget[v.Target] = v
	}
	assert.Equal(t, VolumeMountTypeBind, byTarget["/data"].Type)
	assert.Equal(t, "/project/data", byTarget["/data"].Source)
	assert.True(t, byTarget["/data"].ReadOnly)
	assert.Equal(t, VolumeMountTypeVolume, byTarget["/cache"].Type)
	assert.Equal(t, VolumeMountTypeTmpfs, byTarget["/scratch"].Type)
}

func TestParseService_Build(t *testing.T) {
	svc, err := ParseService([]byte(serviceWithBuildSpec), "/project", "app")
	require.NoError(t, err)
	require.NotNil(t, svc.Build)
	assert.Equal(t, "/project/app", svc.Build.Context)
	assert.Equal(t, "Dockerfile.prod", svc.Build.Dockerfile)
	assert.Equal(t, map[string]string{"VERSION": "1.2"}, svc.Build.Args)
}

// =============================================================================
// Document Section Tests
// =============================================================================

func TestRunSection(t *testing.T) {
	home := "/home/app"
	svc := &Service{
		Name:        "api",
		Image:       "myapp:1.0",
		Command:     []string{"serve"},
		Entrypoint:  []string{"/bin/sh", "-c"},
		Environment: map[string]*string{"HOME": &home, "TERM": nil},
		Ports:       []Port{{Target: 80, Published: "8080"}, {Target: 9000, Published: "9000-9001", HostIP: "127.0.0.1"}},
		Volumes: []VolumeMount{
			{Type: VolumeMountTypeBind, Source: "/project/data", Target: "/data", ReadOnly: true},
			{Type: VolumeMountTypeTmpfs, Target: "/scratch"},
		},
		WorkingDir: "/srv",
		Labels:     map[string]string{"b": "2", "a": "1"},
	}

	assert.Equal(t, map[string]any{
		"image":      "myapp:1.0",
		"cmd":        []any{"serve"},
		"entrypoint": "/bin/sh -c",
		"workdir":    "/srv",
		"env":        map[string]any{"HOME": "/home/app", "TERM": nil},
		"publish": []any{
			map[string]any{"container": 80, "host": 8080},
			map[string]any{"container": 9000, "host": "9000-9001", "ip": "127.0.0.1"},
		},
		"mount": []any{
			map[string]any{"type": "bind", "source": "/project/data", "destination": "/data", "readonly": true},
		},
		"tmpfs": []any{map[string]any{"destination": "/scratch"}},
		"label": []any{"a=1", "b=2"},
	}, svc.RunSection())
}

func TestRunSection_Minimal(t *testing.T) {
	svc := &Service{Name: "app", Image: "nginx"}
	assert.Equal(t, map[string]any{"image": "nginx"}, svc.RunSection())
}

func TestBuildSection(t *testing.T) {
	svc := &Service{
		Image: "myapp:dev",
		Build: &BuildConfig{Context: "/project/app", Dockerfile: "Dockerfile.prod", Args: map[string]string{"VERSION": "1.2"}},
	}
	assert.Equal(t, map[string]any{
		"path":      "/project/app",
		"file":      "Dockerfile.prod",
		"tag":       "myapp:dev",
		"build-arg": map[string]any{"VERSION": "1.2"},
	}, svc.BuildSection())

	assert.Nil(t, (&Service{Image: "nginx"}).BuildSection())
}

// =============================================================================
// Error Type Tests
// =============================================================================

func TestParseError_Error(t *testing.T) {
	err := NewParseError("services.web", "no such service", ErrServiceNotFound)
	assert.Equal(t, "services.web: no such service", err.Error())

	err = NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	assert.Equal(t, "invalid YAML syntax", err.Error())
}

func TestParseError_Unwrap(t *testing.T) {
	err := NewParseError("services", "a service name is required", ErrAmbiguousService)
	assert.ErrorIs(t, err, ErrAmbiguousService)
}
