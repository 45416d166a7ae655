package resources

type ResourceType int

const (
	// ResourceTypeNone marks files the asset index ignores.
	ResourceTypeNone ResourceType = iota
	// ResourceTypeBinary is compiled SPIR-V bytecode (.spv).
	ResourceTypeBinary
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeBinary:
		return "binary"
	default:
		return "none"
	}
}

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
