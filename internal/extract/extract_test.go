package extract

import (
	"strings"
	"testing"
)

func TestExtractor_Text(t *testing.T) {
	e := NewExtractor(10000)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips tags",
			raw:  "<html><body><p>Nova reserva de quarto</p></body></html>",
			want: "Nova reserva de quarto",
		},
		{
			name: "drops script and style blocks",
			raw:  "<script>var x = 'reserva';</script><style>.a{color:red}</style><p>conteudo real aqui</p>",
			want: "conteudo real aqui",
		},
		{
			name: "decodes named entities",
			raw:  "check-in&nbsp;&amp;&nbsp;check-out &quot;hoje&quot; &lt;cedo&gt; d&#39;agua",
			want: `check-in check-out "hoje" <cedo> d'agua`,
		},
		{
			name: "decodes numeric entities",
			raw:  "reserva confirmada&#33; tarifa &#82;&#36; 100",
			want: "reserva confirmada! tarifa R$ 100",
		},
		{
			name: "collapses whitespace",
			raw:  "check-in\n\n\t  antecipado   do    hospede",
			want: "check-in antecipado do hospede",
		},
		{
			name: "drops single character tokens",
			raw:  "<li>a</li><li>reserva</li><li>x</li><li>do quarto</li>",
			want: "reserva do quarto",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Text(tt.raw); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractor_TextCapsLength(t *testing.T) {
	e := NewExtractor(100)
	raw := "<p>" + strings.Repeat("palavra ", 200) + "</p>"

	got := e.Text(raw)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("capped text should end with ellipsis marker, got %q", got[len(got)-10:])
	}
	if len(got) > 100+len("...") {
		t.Errorf("len(Text()) = %d, want <= %d", len(got), 100+len("..."))
	}
}

func TestExtractor_TextHandlesMalformedNumericEntity(t *testing.T) {
	e := NewExtractor(10000)
	// Out-of-range code points must not panic; fail-soft contract.
	got := e.Text("texto &#99999999999999999999; aqui")
	if !strings.Contains(got, "texto") {
		t.Errorf("Text() = %q, want surviving text", got)
	}
}
