package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const listingPage = `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 3.2 Final//EN">
<html>
 <head>
  <title>Index of /pub/data/uscrn/products/hourly02/2018</title>
  <style>a.CRNH {color: red}</style>
 </head>
 <body>
<h1>Index of /pub/data/uscrn/products/hourly02/2018</h1>
<table>
<tr><th><a href="?C=N;O=D">Name</a></th><th><a href="?C=M;O=A">Last modified</a></th><th><a href="?C=S;O=A">Size</a></th></tr>
<tr><td><a href="/pub/data/uscrn/products/hourly02/">Parent Directory</a></td><td>&nbsp;</td><td align="right">  - </td></tr>
<tr><td><a href="CRNH0203-2018-AK_Aleknagik_1_NNE.txt">CRNH0203-2018-AK_Aleknagik_1_NNE.txt</a></td><td align="right">2019-01-10 14:33  </td><td align="right">2.3M</td></tr>
<tr><td><a href="CRNH0203-2018-AL_Brewton_3_NNE.txt">CRNH0203-2018-AL_Brewton_3_NNE.txt</a></td><td align="right">2019-01-10 14:33  </td><td align="right">2.4M</td></tr>
<tr><td><a href="CRNH0203-2018-WY_Sundance_8_NNW.txt">CRNH0203-2018-WY_Sundance_8_NNW.txt</a></td><td align="right">2019-01-10 14:34  </td><td align="right">2.4M</td></tr>
<tr><td><a href="README.txt">README.txt</a></td><td align="right">2019-01-10 14:34  </td><td align="right">12K</td></tr>
</table>
</body></html>
`

func TestExtractStationFiles(t *testing.T) {
	got := ExtractStationFiles(listingPage, DefaultStationMarker)

	assert.Equal(t, []string{
		"CRNH0203-2018-AK_Aleknagik_1_NNE.txt",
		"CRNH0203-2018-AL_Brewton_3_NNE.txt",
		"CRNH0203-2018-WY_Sundance_8_NNW.txt",
	}, got)
}

func TestExtractStationFiles_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		marker string
		want   []string
	}{
		{"no matches", "<html><body>README.txt</body></html>", "CRNH", []string{}},
		{"empty page", "", "CRNH", []string{}},
		{"duplicates kept", "CRNH-a.txt\nCRNH-a.txt", "CRNH", []string{"CRNH-a.txt", "CRNH-a.txt"}},
		{"plain text listing", "CRNH-a.txt CRNH-b.txt\n\nnotes.txt\n", "CRNH", []string{"CRNH-a.txt", "CRNH-b.txt"}},
		{"default marker", "CRNH-a.txt", "", []string{"CRNH-a.txt"}},
		{"custom marker", "CRNH-a.txt CRND-b.txt", "CRND", []string{"CRND-b.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractStationFiles(tt.page, tt.marker)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "ab c", PlainText("<p>a</p><p>b c</p>"))
	assert.Equal(t, "x & y", PlainText("x &amp; y"))
	assert.Equal(t, "kept", PlainText("<script>var a = 1;</script>kept<style>p{}</style>"))
	assert.Equal(t, "1 2 3\n4 5 6\n", PlainText("1 2 3\n4 5 6\n"))
}
