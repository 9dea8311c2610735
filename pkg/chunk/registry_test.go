package chunk

// fakeRegistry is a minimal Registry for tests: "xorcodec" is a byte codec
// that XORs every byte with a fixed key (self-inverse, so Compress and
// Decompress are the same operation), and "rawimg" is an image codec that
// passes bytes through unchanged. Neither resembles a real codec; they
// exist only to exercise the chunk package's compression call sites without
// pulling in pkg/compression.
type fakeRegistry struct{}

func (fakeRegistry) Type(codec string) CompressionKind {
	switch codec {
	case "":
		return CompressionNone
	case "rawimg":
		return CompressionImage
	default:
		return CompressionByte
	}
}

func (fakeRegistry) Compress(data []byte, codec string) ([]byte, error) {
	if (fakeRegistry{}).Type(codec) == CompressionImage {
		return data, nil
	}
	return xorBytes(data), nil
}

func (fakeRegistry) Decompress(data []byte, codec string) ([]byte, error) {
	if (fakeRegistry{}).Type(codec) == CompressionImage {
		return data, nil
	}
	return xorBytes(data), nil
}

func (fakeRegistry) DecodeToArray(data []byte, codec string) ([]byte, []int, error) {
	return data, nil, nil
}

func xorBytes(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ 0x5A
	}
	return out
}
