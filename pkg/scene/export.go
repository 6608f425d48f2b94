package scene

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// WriteCompressed writes the graph as zstd-compressed JSON.
func WriteCompressed(w io.Writer, g *Graph) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := json.NewEncoder(bw).Encode(g); err != nil {
		enc.Close()
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadCompressed reads a graph written by WriteCompressed and rebuilds its
// group index.
func ReadCompressed(r io.Reader) (*Graph, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	g := NewGraph()
	if err := json.NewDecoder(bufio.NewReaderSize(dec, 256*1024)).Decode(g); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if g.Groups == nil {
		g.Groups = make(map[Group][]string)
	}
	g.reindex()
	return g, nil
}

// WriteFile writes the graph to path, compressed when path ends in .zst.
func WriteFile(path string, g *Graph) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if filepath.Ext(path) == ".zst" {
		return WriteCompressed(f, g)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// ReadFile reads a graph written by WriteFile.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if filepath.Ext(path) == ".zst" {
		return ReadCompressed(f)
	}
	g := NewGraph()
	if err := json.NewDecoder(f).Decode(g); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	g.reindex()
	return g, nil
}
