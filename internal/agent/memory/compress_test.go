package memory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestCompress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single transaction untouched",
			in:   "Registró $15,000 en Comida.",
			want: "Registró $15,000 en Comida.",
		},
		{
			name: "distinct categories untouched",
			in:   "Registró $15,000 en Comida. Registró $3,000 en Transporte.",
			want: "Registró $15,000 en Comida. Registró $3,000 en Transporte.",
		},
		{
			name: "same category merged",
			in:   "Registró $15,000 en Comida. Registró $8,000 en Comida.",
			want: "Registró 2 gastos en Comida ($23,000 total).",
		},
		{
			name: "case-insensitive grouping keeps first casing",
			in:   "Registró $1.000 en Café. Registró $2,500 en café. Registró $500 en CAFÉ.",
			want: "Registró 3 gastos en Café ($4,000 total).",
		},
		{
			name: "other sentences come first",
			in:   "Consultó su balance. Registró $15,000 en Comida. Registró $3,000 en Transporte. Preguntó sobre la app. Registró $5,000 en comida.",
			want: "Consultó su balance. Preguntó sobre la app. Registró 2 gastos en Comida ($20,000 total). Registró $3,000 en Transporte.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compress(tt.in))
		})
	}
}

func TestCompressIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	others := []string{"Consultó su balance.", "Consultó progreso de metas.", "Preguntó sobre la app."}
	categories := []string{"Comida", "comida", "Transporte", "Ocio"}
	sentence := gen.IntRange(0, 6999).Map(func(n int) string {
		if n%7 < len(others) {
			return others[n%7]
		}
		return fmt.Sprintf("Registró $%s en %s.", money(float64(n*10)), categories[n%7-len(others)])
	})

	properties.Property("compressing twice equals compressing once", prop.ForAll(
		func(parts []string) bool {
			once := Compress(strings.Join(parts, " "))
			return Compress(once) == once
		},
		gen.SliceOf(sentence),
	))

	properties.Property("total spend per category is preserved", prop.ForAll(
		func(amounts []int) bool {
			var sb []string
			sum := 0
			for _, a := range amounts {
				sb = append(sb, fmt.Sprintf("Registró $%s en Comida.", money(float64(a))))
				sum += a
			}
			out := Compress(strings.Join(sb, " "))
			if len(amounts) < 2 {
				return out == strings.Join(sb, " ")
			}
			return out == fmt.Sprintf("Registró %d gastos en Comida ($%s total).", len(amounts), money(float64(sum)))
		},
		gen.SliceOf(gen.IntRange(1, 1_000_000)),
	))

	properties.TestingRun(t)
}
