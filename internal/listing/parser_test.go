package listing_test

import (
	"slices"
	"testing"

	"github.com/caesb-automation/baixa/internal/listing"
)

const partialResponse = `<?xml version='1.0' encoding='UTF-8'?>
<partial-response><changes>
<update id="abas:formRecebidas:tblRecebidas"><![CDATA[
<tr data-ri="0"><td>1</td><td>EMITIDA</td><td>CORTE</td><td>0000123456789012</td><td>x</td></tr>
<tr data-ri="1"><td>2</td><td>EMITIDA</td><td>CORTE</td><td>0000123456789013</td><td>x</td></tr>
]]></update>
<update id="javax.faces.ViewState"><![CDATA[-123:456]]></update>
</changes></partial-response>`

func TestParsePartialResponse(t *testing.T) {
	got := listing.ParseOrderIDs(partialResponse)
	want := []string{"0000123456789012", "0000123456789013"}

	if !slices.Equal(got, want) {
		t.Errorf("orders: got %v, want %v", got, want)
	}
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "plain rows",
			body: `<tr data-ri="0"><td>a</td><td>b</td><td>c</td><td> 0000123456789012 </td></tr>`,
			want: []string{"0000123456789012"},
		},
		{
			name: "short row skipped",
			body: `<tr data-ri="0"><td>a</td><td>b</td></tr>` +
				`<tr data-ri="1"><td>a</td><td>b</td><td>c</td><td>0000123456789013</td></tr>`,
			want: []string{"0000123456789013"},
		},
		{
			name: "blank cell skipped",
			body: `<tr data-ri="0"><td>a</td><td>b</td><td>c</td><td>  </td></tr>` +
				`<tr data-ri="1"><td>a</td><td>b</td><td>c</td><td>1076543210987654</td></tr>`,
			want: []string{"1076543210987654"},
		},
		{
			name: "duplicates removed preserving order",
			body: `<tr data-ri="0"><td>a</td><td>b</td><td>c</td><td>0000123456789012</td></tr>` +
				`<tr data-ri="1"><td>a</td><td>b</td><td>c</td><td>0000123456789013</td></tr>` +
				`<tr data-ri="2"><td>a</td><td>b</td><td>c</td><td>0000123456789012</td></tr>`,
			want: []string{"0000123456789012", "0000123456789013"},
		},
		{
			name: "rows without data-ri ignored",
			body: `<tr><td>a</td><td>b</td><td>c</td><td>not-an-order</td></tr>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := listing.ParseOrderIDs(tt.body)
			if !slices.Equal(got, tt.want) {
				t.Errorf("orders: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTokenFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "digits in stripped text",
			body: "pending: 0000123456789012 and 123456789012345678 today",
			want: []string{"0000123456789012", "123456789012345678"},
		},
		{
			name: "too short and too long ignored",
			body: "123456789012345 1234567890123456789",
			want: nil,
		},
		{
			name: "duplicate tokens collapsed",
			body: "0000123456789012 0000123456789012",
			want: []string{"0000123456789012"},
		},
		{
			name: "unrecognizable body",
			body: "<html><body>session expired</body></html>",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := listing.ParseOrderIDs(tt.body)
			if !slices.Equal(got, tt.want) {
				t.Errorf("orders: got %v, want %v", got, tt.want)
			}
		})
	}
}
