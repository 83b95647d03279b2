package pipeline

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-loudnorm/measure/loudness"
)

// displayFloorLU bounds reported loudness values from below. Values
// this low carry no information beyond "silence" and would otherwise
// break the report's column alignment.
const displayFloorLU = -100.0

// WriteBlockReport writes one line per gating block, preceded by a
// comment line naming the file. Loudness below the display floor is
// clamped in the report only, never in the measurement itself.
func WriteBlockReport(w io.Writer, path string, blocks []loudness.BlockMeasurement) error {
	if _, err := fmt.Fprintf(w, "# %s\n", path); err != nil {
		return fmt.Errorf("pipeline: report: %w", err)
	}

	for _, block := range blocks {
		_, err := fmt.Fprintf(w, "block %4d  momentary %+7.2f LUFS  short-term %+7.2f LUFS\n",
			block.Index, max(block.Momentary, displayFloorLU), max(block.ShortTerm, displayFloorLU))
		if err != nil {
			return fmt.Errorf("pipeline: report: %w", err)
		}
	}

	return nil
}
