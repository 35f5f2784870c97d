package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"

	"github.com/arloliu/textgrid"
	"github.com/arloliu/textgrid/format"
	"github.com/arloliu/textgrid/grid"
	"github.com/arloliu/textgrid/pack"
	"github.com/arloliu/textgrid/store"
)

// ValidateCmd checks one or more files.
type ValidateCmd struct {
	Files []string `arg:"" help:"TextGrid files to check"`
}

// Run reports every file and fails if any file is invalid.
func (c *ValidateCmd) Run(e *env) error {
	failed := 0
	for _, path := range c.Files {
		if _, err := e.readFile(path, true); err != nil {
			fmt.Fprintf(e.out, "FAIL %s: %v\n", path, err)
			failed++

			continue
		}
		fmt.Fprintf(e.out, "ok   %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(c.Files))
	}

	return nil
}

// ConvertCmd rewrites a file in another encoding.
type ConvertCmd struct {
	Input  string `arg:"" help:"Input file" type:"existingfile"`
	Output string `arg:"" help:"Output file"`
	Format string `name:"format" short:"f" help:"Output format: long, short, binary (default from extension or config)"`
}

// Run converts Input to Output.
func (c *ConvertCmd) Run(e *env) error {
	doc, err := e.readFile(c.Input, e.cfg.Validate)
	if err != nil {
		return err
	}

	if det, ok := textgrid.DetectPath(c.Output); ok && det.Packed && c.Format == "" {
		return e.writePack(c.Output, doc, pack.DefaultFormat)
	}

	f, err := e.outputFormat(c.Output, c.Format)
	if err != nil {
		return err
	}

	data, err := textgrid.Write(doc, f, textgrid.WithValidation(e.cfg.Validate))
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return err
	}
	e.logger.Info("converted", "input", c.Input, "output", c.Output, "format", f)

	return nil
}

// outputFormat picks the flag, then the extension, then the config default.
// A text extension keeps a text format chosen by config.
func (e *env) outputFormat(path, flag string) (format.Format, error) {
	if flag != "" {
		return format.ParseFormat(flag)
	}

	cfgFormat, err := e.cfg.OutputFormat()
	if err != nil {
		return 0, err
	}

	det, ok := textgrid.DetectPath(path)
	switch {
	case !ok:
		return cfgFormat, nil
	case det.Format == format.FormatBinary:
		return format.FormatBinary, nil
	case cfgFormat.IsText():
		return cfgFormat, nil
	default:
		return det.Format, nil
	}
}

// InfoCmd describes a file.
type InfoCmd struct {
	File string `arg:"" help:"TextGrid file" type:"existingfile"`
}

// Run prints the encoding, bounds, tiers and digests.
func (c *InfoCmd) Run(e *env) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	det, err := textgrid.Detect(data)
	if err != nil {
		return err
	}
	doc, err := textgrid.Read(data, textgrid.WithValidation(false))
	if err != nil {
		return err
	}

	sum := blake3.Sum256(data)
	fmt.Fprintf(e.out, "file:        %s\n", c.File)
	fmt.Fprintf(e.out, "encoding:    %s\n", det)
	fmt.Fprintf(e.out, "span:        [%v, %v]\n", doc.XMin(), doc.XMax())
	fmt.Fprintf(e.out, "fingerprint: %016x\n", doc.Fingerprint())
	fmt.Fprintf(e.out, "blake3:      %s\n", hex.EncodeToString(sum[:]))
	if err := doc.Validate(); err != nil {
		fmt.Fprintf(e.out, "valid:       no (%v)\n", err)
	} else {
		fmt.Fprintf(e.out, "valid:       yes\n")
	}

	fmt.Fprintf(e.out, "tiers:       %d\n", doc.NumTiers())
	for i, t := range doc.Tiers() {
		noun := "intervals"
		if t.Kind == grid.PointTier {
			noun = "points"
		}
		fmt.Fprintf(e.out, "  %d. %-12s %-12s [%v, %v] %d %s\n", i+1, t.Name, t.Kind.ClassName(), t.XMin, t.XMax, t.Len(), noun)
	}

	return nil
}

// PackCmd writes a pack.
type PackCmd struct {
	Input       string `arg:"" help:"Input file" type:"existingfile"`
	Output      string `arg:"" help:"Output pack file"`
	Compression string `name:"compression" short:"z" help:"none, zstd, s2, lz4 or xz (default from config)"`
	Payload     string `name:"payload" help:"Payload format: long, short or binary" default:"binary"`
}

// Run packs Input into Output and reports the compression ratio.
func (c *PackCmd) Run(e *env) error {
	doc, err := e.readFile(c.Input, e.cfg.Validate)
	if err != nil {
		return err
	}
	if c.Compression != "" {
		e.cfg.Compression = c.Compression
	}

	f, err := format.ParseFormat(c.Payload)
	if err != nil {
		return err
	}

	return e.writePack(c.Output, doc, f)
}

func (e *env) writePack(path string, doc *grid.Document, f format.Format) error {
	ct, err := e.cfg.CompressionType()
	if err != nil {
		return err
	}

	if e.cfg.Validate {
		if err := doc.Validate(); err != nil {
			return err
		}
	}

	data, stats, err := pack.EncodeStats(doc, pack.WithCompression(ct), pack.WithPayloadFormat(f))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(e.out, "%s: %s payload, %s, %d -> %d bytes (%.1f%% saved)\n",
		path, f, ct, stats.OriginalSize, stats.CompressedSize, stats.SpaceSavings())

	return nil
}

// RenameTierCmd renames a tier and writes the result.
type RenameTierCmd struct {
	Input   string `arg:"" help:"Input file" type:"existingfile"`
	Output  string `arg:"" help:"Output file"`
	OldName string `arg:"" help:"Current tier name"`
	NewName string `arg:"" help:"New tier name"`
}

// Run applies the rename.
func (c *RenameTierCmd) Run(e *env) error {
	doc, err := e.readFile(c.Input, e.cfg.Validate)
	if err != nil {
		return err
	}
	if err := doc.RenameTier(c.OldName, c.NewName); err != nil {
		return err
	}

	return e.writeEdited(c.Output, doc)
}

// MergeTiersCmd merges two interval tiers.
type MergeTiersCmd struct {
	Input   string `arg:"" help:"Input file" type:"existingfile"`
	Output  string `arg:"" help:"Output file"`
	First   string `arg:"" help:"First interval tier"`
	Second  string `arg:"" help:"Second interval tier"`
	NewName string `arg:"" help:"Name of the merged tier"`
	Keep    bool   `name:"keep" help:"Keep the source tiers"`
}

// Run merges First and Second into NewName.
func (c *MergeTiersCmd) Run(e *env) error {
	doc, err := e.readFile(c.Input, e.cfg.Validate)
	if err != nil {
		return err
	}
	if err := doc.MergeTiers(c.First, c.Second, c.NewName); err != nil {
		return err
	}

	if !c.Keep {
		sources := []string{c.First}
		if c.Second != c.First {
			sources = append(sources, c.Second)
		}
		for _, name := range sources {
			if err := doc.RemoveTier(doc.TierIndex(name)); err != nil {
				return err
			}
		}
	}

	for _, h := range doc.UndoHistory() {
		e.logger.Debug("edit", "id", h.ID, "kind", h.Kind, "change", h.Description)
	}

	return e.writeEdited(c.Output, doc)
}

// writeEdited writes doc in the format implied by path.
func (e *env) writeEdited(path string, doc *grid.Document) error {
	if det, ok := textgrid.DetectPath(path); ok && det.Packed {
		return e.writePack(path, doc, pack.DefaultFormat)
	}

	f, err := e.outputFormat(path, "")
	if err != nil {
		return err
	}

	data, err := textgrid.Write(doc, f, textgrid.WithValidation(e.cfg.Validate))
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// StoreGroup contains archive operations.
type StoreGroup struct {
	Put  StorePutCmd  `cmd:"" help:"Store a file under a name"`
	Get  StoreGetCmd  `cmd:"" help:"Write a stored document to a file"`
	List StoreListCmd `cmd:"" help:"List stored documents"`
	Rm   StoreRmCmd   `cmd:"" help:"Delete a stored document"`
}

func (e *env) openStore() (*store.Store, error) {
	ct, err := e.cfg.CompressionType()
	if err != nil {
		return nil, err
	}

	return store.Open(context.Background(), e.cfg.Store, store.WithLogger(e.logger), store.WithCompression(ct))
}

// StorePutCmd stores a file.
type StorePutCmd struct {
	Name string `arg:"" help:"Document name"`
	File string `arg:"" help:"TextGrid file" type:"existingfile"`
}

// Run stores File under Name.
func (c *StorePutCmd) Run(e *env) error {
	doc, err := e.readFile(c.File, e.cfg.Validate)
	if err != nil {
		return err
	}

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	entry, err := s.Put(context.Background(), c.Name, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "stored %s (%d bytes, blake3 %s)\n", entry.Name, entry.Size, entry.Digest)

	return nil
}

// StoreGetCmd retrieves a document.
type StoreGetCmd struct {
	Name   string `arg:"" help:"Document name"`
	Output string `arg:"" help:"Output file"`
}

// Run writes the stored document to Output.
func (c *StoreGetCmd) Run(e *env) error {
	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.Get(context.Background(), c.Name, grid.WithHistoryCapacity(e.cfg.HistoryCapacity))
	if err != nil {
		return err
	}

	return e.writeEdited(c.Output, doc)
}

// StoreListCmd lists the archive.
type StoreListCmd struct{}

// Run prints one line per stored document.
func (c *StoreListCmd) Run(e *env) error {
	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List(context.Background())
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Fprintf(e.out, "%-20s %2d tiers  [%v, %v]  %6d bytes  %016x  %s\n",
			entry.Name, entry.Tiers, entry.XMin, entry.XMax, entry.Size, entry.Fingerprint,
			entry.Updated.Format("2006-01-02 15:04:05"))
	}

	return nil
}

// StoreRmCmd deletes a document.
type StoreRmCmd struct {
	Name string `arg:"" help:"Document name"`
}

// Run deletes Name.
func (c *StoreRmCmd) Run(e *env) error {
	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Delete(context.Background(), c.Name)
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run prints the version.
func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintf(e.out, "textgrid %s\n", version)
	return nil
}

// readFile reads and decodes path with the configured history capacity.
func (e *env) readFile(path string, validate bool) (*grid.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := textgrid.Read(data,
		textgrid.WithValidation(validate),
		textgrid.WithDocumentOptions(grid.WithHistoryCapacity(e.cfg.HistoryCapacity), grid.WithLogger(e.logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}
