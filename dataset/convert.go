package dataset

import (
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Splits are the JSON lines files JSONLToArrow expects, without the
// .jsonl extension.
var Splits = []string{"train", "validation", "test"}

// DefaultLimit is how many rows ArrowToJSON writes by default.
const DefaultLimit = 20

// JSONLToArrow converts train.jsonl, validation.jsonl and test.jsonl
// of inputDir into a dataset dict at outputDir.  All three must exist;
// nothing is written otherwise.
func JSONLToArrow(inputDir, outputDir string) error {
	paths := make([]string, len(Splits))
	for i, s := range Splits {
		paths[i] = filepath.Join(inputDir, s+".jsonl")
		st, err := os.Stat(paths[i])
		if err != nil {
			return errors.Wrapf(err, "file %s not found", paths[i])
		}
		if st.IsDir() {
			return errors.Errorf("%s is a directory", paths[i])
		}
	}

	mem := memory.NewGoAllocator()
	for i, s := range Splits {
		rows, err := ReadJSONLFile(paths[i])
		if err != nil {
			return err
		}
		rec, err := NewRecord(mem, rows)
		if err != nil {
			return errors.Wrapf(err, "converting %s", paths[i])
		}
		err = SaveSplit(filepath.Join(outputDir, s), s, rec)
		rec.Release()
		if err != nil {
			return err
		}
		log.Infof("Converted %s: %s rows", s, humanize.Comma(int64(len(rows))))
	}
	if err := SaveDict(outputDir, Splits); err != nil {
		return err
	}
	log.Infof("Saved dataset to: %s", outputDir)
	return nil
}

// ArrowToJSON writes the first limit rows of a split of the dataset at
// path to output, as a JSON array or as JSON lines.  A limit of zero
// writes every row.
func ArrowToJSON(path, split, output string, limit int, lines bool) error {
	s, err := Open(path, split)
	if err != nil {
		return err
	}
	defer s.Release()
	log.Infof("Loaded dataset with %s samples.", humanize.Comma(s.NumRows()))

	rows, err := s.Rows(limit)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if lines {
		err = WriteJSONL(f, rows)
	} else {
		err = WriteJSON(f, rows)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", output)
	}
	log.Infof("Successfully saved %s samples to '%s'", humanize.Comma(int64(len(rows))), output)
	return nil
}
