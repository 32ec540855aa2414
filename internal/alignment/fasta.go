package alignment

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/agbru/distcalc/internal/errors"
)

// ReadFASTA parses aligned FASTA records. The record name is the first
// whitespace-separated token of the header; sequence lines are joined with
// surrounding whitespace removed. Characters are kept as written so that
// open (text) alphabets stay case-sensitive.
func ReadFASTA(r io.Reader, moltype Moltype) (*Alignment, error) {
	br := bufio.NewReader(r)
	var (
		names  []string
		seqs   [][]byte
		buf    []byte
		lineNo int
	)
	flush := func() {
		if len(names) > len(seqs) {
			seqs = append(seqs, bytes.Clone(buf))
			buf = buf[:0]
		}
	}
	for {
		line, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, apperrors.WrapError(err, "read fasta")
		}
		eof := err == io.EOF
		lineNo++
		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0:
		case line[0] == '>':
			flush()
			fields := strings.Fields(string(line[1:]))
			if len(fields) == 0 {
				return nil, apperrors.ValidationError{Field: "fasta", Message: fmt.Sprintf("line %d: empty header", lineNo)}
			}
			names = append(names, fields[0])
		default:
			if len(names) == 0 {
				return nil, apperrors.ValidationError{Field: "fasta", Message: fmt.Sprintf("line %d: sequence data before first header", lineNo)}
			}
			buf = append(buf, line...)
		}
		if eof {
			break
		}
	}
	flush()
	return New(names, seqs, moltype)
}

// OpenFASTA reads an alignment from path. "-" reads standard input and a
// ".gz" suffix enables gzip decompression.
func OpenFASTA(path string, moltype Moltype) (*Alignment, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	aln, err := ReadFASTA(rc, moltype)
	if err != nil {
		return nil, apperrors.WrapError(err, "load %s", path)
	}
	return aln, nil
}

func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}
