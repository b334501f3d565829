package membershipv1

import (
	"io"

	"connectrpc.com/connect"
	"github.com/klauspost/compress/gzip"
)

const compressMinBytes = 1024

// HandlerOptions configures a handler to speak the membership wire format.
func HandlerOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(Codec{}),
		connect.WithCompression("gzip", newDecompressor, newCompressor),
		connect.WithCompressMinBytes(compressMinBytes),
	}
}

// ClientOptions configures a client to speak the membership wire format.
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{
		connect.WithCodec(Codec{}),
		connect.WithAcceptCompression("gzip", newDecompressor, newCompressor),
		connect.WithSendCompression("gzip"),
		connect.WithCompressMinBytes(compressMinBytes),
	}
}

func newDecompressor() connect.Decompressor { return &gzip.Reader{} }

func newCompressor() connect.Compressor { return gzip.NewWriter(io.Discard) }
