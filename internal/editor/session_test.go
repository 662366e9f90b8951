// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package editor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pdf "github.com/ksharindam/pdfcook"
)

// testPDF assembles a minimal classical-xref PDF with n A4 pages.
func testPDF(n int) []byte {
	var buf bytes.Buffer
	offsets := map[int]int{}
	buf.WriteString("%PDF-1.4\n")

	writeObj := func(id int, body string) {
		offsets[id] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", id, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 3+i)
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Count %d /Kids [%s] /MediaBox [0 0 595 842] >>", n, kids))
	for i := 0; i < n; i++ {
		writeObj(3+i, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << >> /Contents %d 0 R >>", 3+n+i))
	}
	for i := 0; i < n; i++ {
		content := fmt.Sprintf("q 1 0 0 1 %d 0 cm Q", i)
		offsets[3+n+i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", 3+n+i, len(content), content)
	}
	xref := buf.Len()
	total := 3 + 2*n
	fmt.Fprintf(&buf, "xref\n0 %d\n", total)
	buf.WriteString("0000000000 65535 f \n")
	for id := 1; id < total; id++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, xref)
	return buf.Bytes()
}

func openTestDoc(t *testing.T, pages int) (*Session, *pdf.Document) {
	t.Helper()
	ctx := pdf.NewContext(true, false)
	data := testPDF(pages)
	d, err := pdf.Open(ctx, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return NewSession(ctx, &bytes.Buffer{}), d
}

func TestRunDelRemovesPages(t *testing.T) {
	s, d := openTestDoc(t, 3)
	require.NoError(t, s.Run("del{2}", d))
	require.Equal(t, 2, d.PageCount())
}

func TestRunSelectReverseTwiceRestoresOrder(t *testing.T) {
	s, d := openTestDoc(t, 4)
	first := d.Page(0)
	require.NoError(t, s.Run("select{$..1}", d))
	require.Equal(t, 4, d.PageCount())
	require.NoError(t, s.Run("select{$..1}", d))
	require.Equal(t, 4, d.PageCount())
	require.Same(t, first, d.Page(0))
}

func TestRunSelectWithRepeatsGrowsDocument(t *testing.T) {
	s, d := openTestDoc(t, 2)
	require.NoError(t, s.Run("select{1 1 2}", d))
	require.Equal(t, 3, d.PageCount())
}

func TestRunModuloIdentity(t *testing.T) {
	s, d := openTestDoc(t, 5)
	require.NoError(t, s.Run("modulo(step=1, round=1)", d))
	require.Equal(t, 5, d.PageCount())
}

func TestRunModuloStepFour(t *testing.T) {
	s, d := openTestDoc(t, 8)
	require.NoError(t, s.Run("modulo(step=4){1 2 3}", d))
	require.Equal(t, 6, d.PageCount())
}

func TestRunModuloPadsWithBlanks(t *testing.T) {
	s, d := openTestDoc(t, 6)
	require.NoError(t, s.Run("modulo(step=4){1 2 3}", d))
	// 6 pages round up to 8; two blocks of {1 2 3}.
	require.Equal(t, 6, d.PageCount())
}

func TestRunBookPadsToMultipleOfFour(t *testing.T) {
	s, d := openTestDoc(t, 6)
	require.NoError(t, s.Run("book", d))
	require.Equal(t, 8, d.PageCount())
}

func TestRunNewAppendsBlankPage(t *testing.T) {
	s, d := openTestDoc(t, 2)
	require.NoError(t, s.Run("new", d))
	require.Equal(t, 3, d.PageCount())
	require.Equal(t, 842.0, d.Page(2).MediaBox().Upper.Y)
}

func TestRunRotateMakesLandscape(t *testing.T) {
	s, d := openTestDoc(t, 1)
	require.NoError(t, s.Run("rotate(angle=90)", d))
	paper := d.Page(0).MediaBox()
	require.InDelta(t, 842, paper.Upper.X, 1e-6)
	require.InDelta(t, 595, paper.Upper.Y, 1e-6)
}

func TestRunRotateRejectsNonRightAngle(t *testing.T) {
	s, d := openTestDoc(t, 1)
	require.Error(t, s.Run("rotate(angle=45)", d))
}

func TestRunNupTwoUp(t *testing.T) {
	s, d := openTestDoc(t, 4)
	require.NoError(t, s.Run("nup(n=2, cols=2, paper=a4)", d))
	require.Equal(t, 2, d.PageCount())
	paper := d.Page(0).MediaBox()
	require.InDelta(t, 842, paper.Upper.X, 1e-6)
	require.InDelta(t, 595, paper.Upper.Y, 1e-6)
}

func TestRunScaletoUnknownPaperFails(t *testing.T) {
	s, d := openTestDoc(t, 1)
	require.Error(t, s.Run("scaleto(paper=nosuch)", d))
}

func TestRunSpaperDefinesCustomSize(t *testing.T) {
	s, d := openTestDoc(t, 1)
	require.NoError(t, s.Run("spaper(card, 200, 300) paper(card)", d))
	require.Equal(t, 200.0, d.Page(0).MediaBox().Upper.X)
	require.Equal(t, 300.0, d.Page(0).MediaBox().Upper.Y)
}

func TestRunUnknownCommandAbortsBeforeMutation(t *testing.T) {
	s, d := openTestDoc(t, 3)
	require.Error(t, s.Run("del{1} bogus{2}", d))
	// The two-pass executor must reject the whole batch before "del" runs.
	require.Equal(t, 3, d.PageCount())
}

func TestRunBadArgTypeAbortsBeforeMutation(t *testing.T) {
	s, d := openTestDoc(t, 3)
	require.Error(t, s.Run(`del{1} rotate(angle="ninety")`, d))
	require.Equal(t, 3, d.PageCount())
}

func TestRunInfoWritesReport(t *testing.T) {
	s, d := openTestDoc(t, 2)
	var out bytes.Buffer
	s.Stdout = &out
	require.NoError(t, s.Run("info{1}", d))
	require.Contains(t, out.String(), "Paper 0 0 595 842")
}

func TestRunWriteCommandSavesFile(t *testing.T) {
	s, d := openTestDoc(t, 2)
	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, s.Run(fmt.Sprintf("write(name=%q)", path), d))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	reopened, err := pdf.Open(s.Ctx, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, 2, reopened.PageCount())
}

func TestRunRotateThenSaveRoundTrip(t *testing.T) {
	s, d := openTestDoc(t, 1)
	require.NoError(t, s.Run("rotate(angle=90)", d))
	var out bytes.Buffer
	require.NoError(t, d.Save(&out))

	reopened, err := pdf.Open(s.Ctx, bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	require.Equal(t, 1, reopened.PageCount())
	paper := reopened.Page(0).MediaBox()
	require.InDelta(t, 842, paper.Upper.X, 1e-6)
	require.InDelta(t, 595, paper.Upper.Y, 1e-6)
}
