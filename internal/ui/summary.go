package ui

import (
	"fmt"
	"time"

	"github.com/bamsammich/fdlab/internal/fileio"
	"github.com/bamsammich/fdlab/internal/race"
	"github.com/bamsammich/fdlab/internal/verify"
)

// CopySummary builds the line printed after a copy.
// Format: copied 4.0 KiB  holes 2 (4.0 MiB)  time 12ms
func CopySummary(res fileio.CopyResult, elapsed time.Duration) string {
	return fmt.Sprintf("copied %s  holes %d (%s)  time %s",
		FormatBytes(res.BytesCopied),
		res.Holes,
		FormatBytes(res.HoleBytes),
		FormatDuration(elapsed),
	)
}

// VerifySummary builds the verdict line for a verification report.
func VerifySummary(r verify.Report, styled bool) string {
	if !r.ContentEqual() {
		return fmt.Sprintf("%s content differs  size %s/%s  %s %s/%s",
			paint(styleFail, "✗", styled),
			FormatCount(r.SrcSize), FormatCount(r.DstSize),
			r.Algorithm, short(r.SrcDigest), short(r.DstDigest),
		)
	}

	holes := "holes match"
	if !r.HolesMatch() {
		holes = "holes differ"
	}
	return fmt.Sprintf("%s identical  size %s  %s %s  %s",
		paint(styleOK, "✓", styled),
		FormatCount(r.SrcSize),
		r.Algorithm, short(r.SrcDigest),
		holes,
	)
}

// RaceSummary describes who won a race.
func RaceSummary(o race.Outcome, atomic bool, styled bool) string {
	variant := "check-then-create"
	if atomic {
		variant = "O_CREAT|O_EXCL"
	}

	verdict := paint(styleOK, "exclusive", styled)
	switch {
	case o.Created > 1:
		verdict = paint(styleFail, fmt.Sprintf("%d callers created the file", o.Created), styled)
	case o.Failed > 0:
		verdict = paint(styleFail, "failed", styled)
	case o.Created == 0:
		verdict = "nobody created the file"
	}

	counts := fmt.Sprintf("created %d  already-exists %d  failed %d",
		o.Created, o.AlreadyExists, o.Failed)
	if o.NotStarted > 0 {
		counts += fmt.Sprintf("  not-started %d", o.NotStarted)
	}
	return fmt.Sprintf("%s: %s  %s", variant, counts, verdict)
}

func short(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
