package export

import (
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// WriteGzipJSON serializes v as JSON and writes it gzip-compressed to path,
// mirroring original_source's serialize_to_gzip_json.
func WriteGzipJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return errors.Wrap(err, "export: gzip writer")
	}
	if err := encode(gz, v); err != nil {
		gz.Close()
		return errors.Wrapf(err, "export: encode %s", path)
	}
	return gz.Close()
}

func encode(w io.Writer, v interface{}) error {
	enc := tracingAPI.NewEncoder(w)
	return enc.Encode(v)
}
