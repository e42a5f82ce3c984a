package tx

// Wire layout offsets and sizes. All integers are little-endian.
const (
	// signatureOffset is the byte offset of the 64-byte signature field,
	// independent of protocol version.
	signatureOffset = 96
	signatureSize   = 64

	// legacyHeaderSize is the fixed header size for version-0 transactions:
	// everything up to and including the signature, with no flags/EC-block
	// fields.
	legacyHeaderSize = signatureOffset + signatureSize

	// headerSizeV1 additionally carries the 4-byte flags word and the
	// 4-byte ecBlockHeight / 8-byte ecBlockId fields.
	headerSizeV1 = legacyHeaderSize + 4 + 4 + 8
)

var zero32 [32]byte
var zero64 [64]byte
