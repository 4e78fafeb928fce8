package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/stats"
)

// Processor maps one loaded file to one record.
type Processor interface {
	// Columns is the result table header; the first entry names the file column.
	Columns() []string
	// Filter selects which files in a folder the tool visits.
	Filter() dataset.Filter
	Process(ds *dataset.Dataset) Record
	// Fail builds the record for a file that could not be processed.
	Fail(file string, err error) Record
}

// NewProcessor returns the processor for cfg.Tool.
func NewProcessor(cfg RunConfig) (Processor, error) {
	switch cfg.Tool {
	case ToolCrossEntropy:
		return &crossEntropyProc{truth: cfg.Columns[0], ref: cfg.Columns[1]}, nil
	case ToolSampleEntropy:
		return &sampenProc{cols: cfg.Columns, m: cfg.Params.EmbeddingDim, factor: cfg.Params.ToleranceFactor}, nil
	case ToolCorrelation:
		return &correlationProc{x: cfg.Columns[0], y: cfg.Columns[1]}, nil
	case ToolTTest:
		return &ttestProc{a: cfg.Columns[0], b: cfg.Columns[1], mode: cfg.Params.Mode, tail: cfg.Params.Tail}, nil
	}
	return nil, fmt.Errorf("%w: unknown tool %q", ErrInvalidConfig, cfg.Tool)
}

// Folder tools that only ever looked at .xlsx and .csv keep that exact-case rule.
var strictTabular = dataset.Filter{Extensions: []string{".xlsx", ".csv"}}

func skipped(file, reason, line string) Record {
	return Record{File: file, Status: StatusSkipped, Reason: reason, Line: line}
}

func failed(file string, err error, line string) Record {
	return Record{File: file, Status: StatusFailed, Reason: err.Error(), Line: line}
}

// truncate cuts both slices to the shorter length.
func truncate[T any](a, b []T) ([]T, []T) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}

type crossEntropyProc struct {
	truth, ref string
}

func (p *crossEntropyProc) Columns() []string {
	return []string{"File Name", "Cross_Entropy", "Reason", "Unique_Col1", "Unique_Col2"}
}

func (p *crossEntropyProc) Filter() dataset.Filter { return strictTabular }

func (p *crossEntropyProc) Fail(file string, err error) Record {
	return failed(file, err, fmt.Sprintf("Error processing %s: %v", file, err))
}

func (p *crossEntropyProc) Process(ds *dataset.Dataset) Record {
	if ds.Index(p.truth) < 0 || ds.Index(p.ref) < 0 {
		return skipped(ds.Name, "Columns not found.", ds.Name+": Columns not found.")
	}
	x, err := p.intColumn(ds, p.truth)
	if err != nil {
		return p.convFailed(ds.Name, err)
	}
	y, err := p.intColumn(ds, p.ref)
	if err != nil {
		return p.convFailed(ds.Name, err)
	}
	x, y = truncate(x, y)

	ce, err := stats.CrossEntropy(x, y)
	rec := Record{
		File:   ds.Name,
		Status: StatusOK,
		Reason: "OK",
		Values: map[string]Cell{
			"Cross_Entropy": Number(ce),
			"Unique_Col1":   Int(len(stats.Distinct(x))),
			"Unique_Col2":   Int(len(stats.Distinct(y))),
		},
	}
	var ue *stats.UndefinedError
	switch {
	case errors.As(err, &ue):
		rec.Status = StatusUndefined
		rec.Reason = ue.Reason
		rec.Line = fmt.Sprintf("Processed %s: Cross Entropy = nan (%s)", ds.Name, ue.Reason)
	case err != nil:
		return p.Fail(ds.Name, err)
	default:
		rec.Line = fmt.Sprintf("Processed %s: Cross Entropy = %s", ds.Name, formatNum(ce))
	}
	rec.Values["Reason"] = Text(rec.Reason)
	return rec
}

func (p *crossEntropyProc) intColumn(ds *dataset.Dataset, name string) ([]int, error) {
	xs, err := ds.Floats(name)
	if err != nil {
		return nil, err
	}
	return stats.RoundInts(stats.DropMissing(xs))
}

func (p *crossEntropyProc) convFailed(file string, err error) Record {
	return Record{
		File:   file,
		Status: StatusSkipped,
		Reason: "Failed to convert columns to int - " + err.Error(),
		Line:   fmt.Sprintf("%s: Failed to convert columns to int - %v", file, err),
	}
}

type sampenProc struct {
	cols   []string
	m      int
	factor float64
}

func (p *sampenProc) Columns() []string {
	out := []string{"Filename"}
	for _, c := range p.cols {
		out = append(out, c+" SampEn")
	}
	return out
}

func (p *sampenProc) Filter() dataset.Filter { return dataset.AnyTabular }

func (p *sampenProc) Fail(file string, err error) Record {
	return failed(file, err, fmt.Sprintf("Error %s: %v", file, err))
}

// Process computes SampEn per selected column. Absent columns are noted and
// left empty; an error in any present column fails the whole file.
func (p *sampenProc) Process(ds *dataset.Dataset) Record {
	rec := Record{File: ds.Name, Status: StatusOK, Values: map[string]Cell{}}
	var logs, missing []string
	for _, col := range p.cols {
		if ds.Index(col) < 0 {
			logs = append(logs, col+" skipped")
			missing = append(missing, col)
			continue
		}
		xs, err := ds.Floats(col)
		if err != nil {
			return p.Fail(ds.Name, err)
		}
		data := stats.DropMissing(xs)
		s, err := stats.SampleEntropy(data, p.m, stats.Tolerance(data, p.factor))
		if err != nil {
			return p.Fail(ds.Name, fmt.Errorf("%s: %w", col, err))
		}
		rec.Values[col+" SampEn"] = Number(s)
		logs = append(logs, fmt.Sprintf("%s=%s", col, formatNum(s)))
	}
	if len(missing) > 0 {
		rec.Reason = "missing columns: " + strings.Join(missing, ", ")
	}
	rec.Line = ds.Name + ": " + strings.Join(logs, ", ")
	return rec
}

type correlationProc struct {
	x, y string
}

func (p *correlationProc) header() string {
	return fmt.Sprintf("Pearson(%s,%s)", dataset.NormalizeName(p.x), dataset.NormalizeName(p.y))
}

func (p *correlationProc) Columns() []string { return []string{"File Name", p.header()} }

func (p *correlationProc) Filter() dataset.Filter { return strictTabular }

func (p *correlationProc) Fail(file string, err error) Record {
	return failed(file, err, fmt.Sprintf("Error %s: %v", file, err))
}

// Process matches columns after trimming and upper-casing both sides, drops
// missing values per column and pairs the survivors by position.
func (p *correlationProc) Process(ds *dataset.Dataset) Record {
	ix, iy := ds.IndexFold(p.x), ds.IndexFold(p.y)
	if ix < 0 || iy < 0 {
		return skipped(ds.Name, "missing selected columns.", ds.Name+": missing selected columns.")
	}
	xs, err := ds.FloatsAt(ix)
	if err != nil {
		return p.Fail(ds.Name, err)
	}
	ys, err := ds.FloatsAt(iy)
	if err != nil {
		return p.Fail(ds.Name, err)
	}
	x, y := stats.DropMissing(xs), stats.DropMissing(ys)
	if min(len(x), len(y)) < 1 {
		return skipped(ds.Name, "not enough data.", ds.Name+": not enough data.")
	}
	x, y = truncate(x, y)
	r, err := stats.Pearson(x, y)
	if err != nil {
		return p.Fail(ds.Name, err)
	}
	return Record{
		File:   ds.Name,
		Status: StatusOK,
		Values: map[string]Cell{p.header(): Number(r)},
		Line:   "Processed: " + ds.Name,
	}
}

type ttestProc struct {
	a, b string
	mode stats.Mode
	tail stats.Tail
}

func (p *ttestProc) Columns() []string {
	return []string{
		"File Name", "T Statistic", "P Value", "Tail", "Levene p", "Variance",
		fmt.Sprintf("Mean A (%s)", p.a), "Pop SD A",
		fmt.Sprintf("Mean B (%s)", p.b), "Pop SD B", "Significance",
	}
}

func (p *ttestProc) Filter() dataset.Filter { return dataset.AnyTabular }

func (p *ttestProc) Fail(file string, err error) Record {
	return failed(file, err, fmt.Sprintf("Error %s: %v", file, err))
}

func (p *ttestProc) Process(ds *dataset.Dataset) Record {
	as, err := ds.Floats(p.a)
	if err != nil {
		return p.Fail(ds.Name, err)
	}
	bs, err := ds.Floats(p.b)
	if err != nil {
		return p.Fail(ds.Name, err)
	}
	res, err := stats.TTest(stats.DropMissing(as), stats.DropMissing(bs), p.mode, p.tail)
	if err != nil {
		return p.Fail(ds.Name, err)
	}
	levene := Text("")
	if p.mode == stats.Independent {
		levene = Number(res.LeveneP)
	}
	cols := p.Columns()
	return Record{
		File:   ds.Name,
		Status: StatusOK,
		Values: map[string]Cell{
			"T Statistic":  Number(res.T),
			"P Value":      Number(res.P),
			"Tail":         Text(res.TailDesc),
			"Levene p":     levene,
			"Variance":     Text(res.VarianceNote()),
			cols[6]:        Number(res.MeanA),
			"Pop SD A":     Number(res.SDA),
			cols[8]:        Number(res.MeanB),
			"Pop SD B":     Number(res.SDB),
			"Significance": Text(res.Significance()),
		},
		Line:  fmt.Sprintf("%s: t = %s, p (%s) = %s", ds.Name, formatNum(res.T), res.TailDesc, formatNum(res.P)),
		TTest: res,
	}
}
