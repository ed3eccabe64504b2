// Package repository persists ranked leaderboards locally and to the hub.
package repository

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// EncodeJSONL writes one JSON object per line, in order.
func EncodeJSONL[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	for i := range rows {
		b, err := sonic.Marshal(rows[i])
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// DecodeJSONL parses newline-delimited JSON. Blank lines are skipped.
func DecodeJSONL[T any](data []byte) ([]T, error) {
	var out []T
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var row T
		if err := sonic.Unmarshal(b, &row); err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrDecode, line, err)
		}
		out = append(out, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out, nil
}

// WriteLocal writes v as indented JSON to path, replacing any existing file.
func WriteLocal(path string, v any) error {
	b, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
