package chart

import (
	"fmt"
	"strings"
)

const barWidth = 10

// Text renders the spec as monospace bars. Each series is scaled to its
// own maximum. format prints one value.
func Text(s Spec, format func(int64) string) string {
	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "📊 *%s*\n", s.Title)
	}
	if len(s.Labels) == 0 {
		b.WriteString("_Tidak ada data_")
		return b.String()
	}
	for _, ser := range s.Series {
		if len(s.Series) > 1 || ser.Label != "" {
			fmt.Fprintf(&b, "\n*%s*\n", ser.Label)
		}
		var max int64
		var total int64
		for _, v := range ser.Data {
			if v > max {
				max = v
			}
			total += v
		}
		for i, label := range s.Labels {
			var v int64
			if i < len(ser.Data) {
				v = ser.Data[i]
			}
			n := 0
			if max > 0 {
				n = int(v * barWidth / max)
			}
			if v > 0 && n == 0 {
				n = 1
			}
			line := fmt.Sprintf("%s %s %s", label, strings.Repeat("█", n)+strings.Repeat("░", barWidth-n), format(v))
			if s.Type == Pie && total > 0 {
				line += fmt.Sprintf(" (%.1f%%)", float64(v)*100/float64(total))
			}
			b.WriteString("`" + line + "`\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
