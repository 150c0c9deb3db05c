package pixel

// Codec decodes one compressed frame into pixel-major samples. It is the
// extension point for JPEG, JPEG-LS, JPEG 2000 and the other encapsulated
// syntaxes this package does not decode itself.
type Codec interface {
	Decode(transferSyntaxUID string, frame []byte, shape Shape) ([]int64, error)
}

// CodecFunc adapts a function to the Codec interface.
type CodecFunc func(transferSyntaxUID string, frame []byte, shape Shape) ([]int64, error)

// Decode calls f.
func (f CodecFunc) Decode(transferSyntaxUID string, frame []byte, shape Shape) ([]int64, error) {
	return f(transferSyntaxUID, frame, shape)
}
