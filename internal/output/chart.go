package output

import (
	"fmt"
	"image/color"

	"github.com/arnabmitra/index-symbols/internal/symbols"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveChart draws a bar chart of symbols and duplicates per exchange. Failed sources are
// marked in red at zero. The image type follows the extension of path.
func SaveChart(res *symbols.Result, path string) error {
	if len(res.Sources) == 0 {
		return fmt.Errorf("nothing to chart")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Constituents per exchange (%d symbols)", len(res.Records))
	p.Y.Label.Text = "Symbols"

	var counts, dups plotter.Values
	var names []string
	for _, src := range res.Sources {
		names = append(names, src.Exchange)
		counts = append(counts, float64(src.Records))
		dups = append(dups, float64(src.Duplicates))
	}

	w := vg.Points(18)
	countBar, err := plotter.NewBarChart(counts, w)
	if err != nil {
		return err
	}
	countBar.Color = color.RGBA{G: 160, B: 80, A: 255}
	countBar.Offset = -w / 2

	dupBar, err := plotter.NewBarChart(dups, w)
	if err != nil {
		return err
	}
	dupBar.Color = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	dupBar.Offset = w / 2

	p.Add(countBar, dupBar)
	p.Legend.Add("symbols", countBar)
	p.Legend.Add("duplicates", dupBar)
	p.Legend.Top = true

	failed := make(plotter.XYs, 0)
	for i, src := range res.Sources {
		if !src.OK() {
			failed = append(failed, plotter.XY{X: float64(i), Y: 0})
		}
	}
	if len(failed) > 0 {
		marks, err := plotter.NewScatter(failed)
		if err != nil {
			return err
		}
		marks.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
		marks.GlyphStyle.Radius = vg.Points(5)
		p.Add(marks)
		p.Legend.Add("failed", marks)
	}

	p.NominalX(names...)

	width := vg.Length(len(names)+2) * vg.Inch
	if width < 6*vg.Inch {
		width = 6 * vg.Inch
	}
	return p.Save(width, 5*vg.Inch, path)
}
