package compose

// =============================================================================
// Service Types
// =============================================================================

// Service is the subset of a compose service that maps onto a di document.
type Service struct {
	Name       string
	Image      string
	Build      *BuildConfig
	Command    []string
	Entrypoint []string
	// Environment values are nil for variables forwarded from the host.
	Environment map[string]*string
	Ports       []Port
	Volumes     []VolumeMount
	WorkingDir  string
	User        string
	Labels      map[string]string
}

// BuildConfig represents build configuration.
type BuildConfig struct {
	Context    string
	Dockerfile string
	Args       map[string]string
}

// Port represents a published port.
type Port struct {
	Target    uint32 // Container port
	Published string // Host port or range ("" = dynamic)
	HostIP    string // Bind IP
}

// VolumeMount represents a volume mount in a service.
type VolumeMount struct {
	Type     VolumeMountType
	Source   string // Path or volume name
	Target   string // Container path
	ReadOnly bool
}

// VolumeMountType represents the type of volume mount.
type VolumeMountType string

const (
	VolumeMountTypeBind   VolumeMountType = "bind"
	VolumeMountTypeVolume VolumeMountType = "volume"
	VolumeMountTypeTmpfs  VolumeMountType = "tmpfs"
)
