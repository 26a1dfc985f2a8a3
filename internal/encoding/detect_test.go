package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flora/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name  string
		input []byte
		want  string
	}

	tests := []testCase{
		{
			name:  "UTF8Passthrough",
			input: []byte("Nombre;Código\nRosaprima;RP\nFlor de Montaña;FM\n"),
			want:  "Nombre;Código\nRosaprima;RP\nFlor de Montaña;FM\n",
		},
		{
			// Windows-1252: ó = 0xF3, ñ = 0xF1
			name:  "Windows1252",
			input: []byte{'C', 0xF3, 'd', 'i', 'g', 'o', ';', 'M', 'o', 'n', 't', 'a', 0xF1, 'a', '\n'},
			want:  "Código;Montaña\n",
		},
		{
			name:  "UTF8BOMStripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("Nombre\n")...),
			want:  "Nombre\n",
		},
		{
			name:  "UTF16LE",
			input: []byte{0xFF, 0xFE, 'N', 0, 'o', 0, '\n', 0},
			want:  "No\n",
		},
		{
			name:  "Empty",
			input: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readAll(t, tt.input))
		})
	}
}

func TestNewUTF8Reader_LargeInput(t *testing.T) {
	input := strings.Repeat("Rosaprima;RP;Tabacundo\n", 1000)
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestSniffDelimiter(t *testing.T) {
	type testCase struct {
		name   string
		sample string
		want   rune
	}

	tests := []testCase{
		{name: "Semicolon", sample: "nombre;codigo;ruc\nA;B;C\n", want: ';'},
		{name: "Comma", sample: "name,code\nRose,R\n", want: ','},
		{name: "Tab", sample: "name\tcode\n", want: '\t'},
		{name: "QuotedCommasIgnored", sample: "\"Flores, S.A.\";\"Quito, EC\"\n", want: ';'},
		{name: "LeadingBlankLines", sample: "\n\n  \nname|code\n", want: '|'},
		{name: "SingleColumn", sample: "name\nRose\n", want: ','},
		{name: "Empty", sample: "", want: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encoding.SniffDelimiter([]byte(tt.sample)))
		})
	}
}

func TestNewCSVReader(t *testing.T) {
	input := []byte{
		'N', 'o', 'm', 'b', 'r', 'e', ';', 'C', 0xF3, 'd', 'i', 'g', 'o', '\n',
		'M', 'o', 'n', 't', 'a', 0xF1, 'a', ';', ' ', 'F', 'M', '\n',
	}

	r, err := encoding.NewCSVReader(bytes.NewReader(input))
	require.NoError(t, err)

	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Nombre", "Código"}, {"Montaña", "FM"}}, rows)
}
