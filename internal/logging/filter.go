package logging

import "io"

// FilteringWriter wraps an io.Writer and redacts secrets from everything
// passing through. It wraps the log file writer so credentials never reach
// disk even when a message slips past call-site redaction.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter returns a FilteringWriter over w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write redacts p before writing. The original length is returned so
// callers don't misread the redaction as a short write.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	if _, err = fw.w.Write([]byte(Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
