package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"19:00000000000000000000000000000000@thread.skype", "19%3A00000000000000000000000000000000%40thread.skype"},
		{"Created By", "Created%20By"},
		{"/sites/project-x/Documents/a&b.docx", "%2Fsites%2Fproject-x%2FDocuments%2Fa%26b.docx"},
		{"it's (fine)!*~", "it's (fine)!*~"},
		{"é", "%C3%A9"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeURIComponent(tt.in))
		})
	}
}

func TestEncodeQueryParameter(t *testing.T) {
	assert.Equal(t, "Team%20Name", EncodeQueryParameter("Team Name"))
	assert.Equal(t, "O''Brien''s%20list", EncodeQueryParameter("O'Brien's list"))
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "PnP &amp; &lt;Term&gt; &quot;set&quot; &#39;1&#39;", EscapeXML(`PnP & <Term> "set" '1'`))
	assert.Equal(t, "plain", EscapeXML("plain"))
}
