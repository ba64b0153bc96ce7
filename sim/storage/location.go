package storage

import "fmt"

// MemoryLocation tags where a buffer lives.
type MemoryLocation int

const (
	// Host is main memory.
	Host MemoryLocation = iota
	// Device is accelerator memory. Buffers handed to filters are Go
	// slices in every case, so a device-tagged buffer is one that the
	// accelerator backend has mapped into host-addressable memory.
	Device
)

func (l MemoryLocation) String() string {
	switch l {
	case Host:
		return "host"
	case Device:
		return "device"
	default:
		return fmt.Sprintf("MemoryLocation(%d)", int(l))
	}
}

// Valid reports whether l is a known location.
func (l MemoryLocation) Valid() bool {
	return l == Host || l == Device
}

func checkLocations(source, target MemoryLocation) error {
	if !source.Valid() {
		return fmt.Errorf("%w: source %s", ErrInvalidLocation, source)
	}
	if !target.Valid() {
		return fmt.Errorf("%w: target %s", ErrInvalidLocation, target)
	}
	return nil
}
