package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "  Basis Data  ", expected: "Basis Data"},
		{in: "Basis\n\t   Data", expected: "Basis Data"},
		{in: "Alg\u0000oritma", expected: "Algoritma"},
		{in: "", expected: ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Normalize(test.in), test.in)
	}
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="x">Halo, <b>Mahasiswa</b> <i>Unhas</i></div>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Halo, Mahasiswa Unhas", GetText(doc.Find("#x").Nodes[0]))
	require.Equal(t, "", GetText(nil))
}

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://sikola.unhas.ac.id/main/auth/courses.php")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://sikola.unhas.ac.id/main/session/1", Resolve(base, "/main/session/1"))
	require.Equal(t, "https://sikola.unhas.ac.id/main/auth/x.php", Resolve(base, "x.php"))
	require.Equal(t, "%zz", Resolve(base, "%zz"))
}
