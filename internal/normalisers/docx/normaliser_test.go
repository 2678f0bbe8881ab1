package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// createTestDOCX creates a minimal DOCX file in memory.
func createTestDOCX(t *testing.T, body string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if body != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func normalise(t *testing.T, body string) (*domain.NormalisedText, error) {
	t.Helper()
	return New().Normalise(context.Background(), &domain.Document{
		Name:    "doc.docx",
		Content: createTestDOCX(t, body),
	})
}

func TestNormaliser_Metadata(t *testing.T) {
	n := New()

	assert.Equal(t, domain.FormatWord, n.Format())
	assert.Equal(t, []string{".docx"}, n.Extensions())
	assert.Equal(t, []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, n.SupportedMIMETypes())
	assert.Equal(t, 30, n.Priority())
}

func TestNormalise_Paragraphs(t *testing.T) {
	text, err := normalise(t, `
<w:p><w:r><w:t>Hello</w:t></w:r></w:p>
<w:p><w:r><w:t>World</w:t></w:r></w:p>`)
	require.NoError(t, err)

	assert.Equal(t, "Hello\nWorld", text.FullText)
	assert.Equal(t, []string{"Hello", "World"}, text.Lines)
}

func TestNormalise_MultipleRuns(t *testing.T) {
	text, err := normalise(t, `
<w:p>
<w:r><w:t xml:space="preserve">Hello </w:t></w:r>
<w:hyperlink><w:r><w:t>World</w:t></w:r></w:hyperlink>
</w:p>`)
	require.NoError(t, err)

	assert.Equal(t, "Hello World", text.FullText)
}

func TestNormalise_TabsAndBreaks(t *testing.T) {
	text, err := normalise(t, `
<w:p>
<w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>
<w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r>
</w:p>`)
	require.NoError(t, err)

	assert.Equal(t, "a\tb\nc", text.FullText)
	assert.Equal(t, []string{"a\tb", "c"}, text.Lines)
}

func TestNormalise_EmptyParagraphsKept(t *testing.T) {
	text, err := normalise(t, `
<w:p><w:r><w:t>first</w:t></w:r></w:p>
<w:p/>
<w:p><w:r><w:t>third</w:t></w:r></w:p>`)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "", "third"}, text.Lines)
}

func TestNormalise_TableParagraphsExcluded(t *testing.T) {
	text, err := normalise(t, `
<w:p><w:r><w:t>body</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	require.NoError(t, err)

	assert.Equal(t, "body", text.FullText)
}

func TestNormalise_TextBoxExcluded(t *testing.T) {
	text, err := normalise(t, `
<w:p>
<w:r><w:t xml:space="preserve">Before </w:t></w:r>
<w:r>
<mc:AlternateContent xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">
<mc:Choice Requires="wps"><w:drawing><wps:wsp xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"><wps:txbx>
<w:txbxContent><w:p><w:r><w:t>Boxed</w:t></w:r></w:p></w:txbxContent>
</wps:txbx></wps:wsp></w:drawing></mc:Choice>
<mc:Fallback><w:pict><v:shape xmlns:v="urn:schemas-microsoft-com:vml"><v:textbox>
<w:txbxContent><w:p><w:r><w:t>Boxed</w:t></w:r></w:p></w:txbxContent>
</v:textbox></v:shape></w:pict></mc:Fallback>
</mc:AlternateContent>
</w:r>
<w:r><w:t>after</w:t></w:r>
</w:p>
<w:p><w:r><w:t>Next</w:t></w:r></w:p>`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Before after", "Next"}, text.Lines)
	assert.NotContains(t, text.FullText, "Boxed")
}

func TestNormalise_FallbackRunNotDuplicated(t *testing.T) {
	text, err := normalise(t, `
<w:p>
<mc:AlternateContent xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">
<mc:Choice Requires="w14"><w:r><w:t>子供</w:t></w:r></mc:Choice>
<mc:Fallback><w:r><w:t>子供</w:t></w:r></mc:Fallback>
</mc:AlternateContent>
</w:p>`)
	require.NoError(t, err)

	assert.Equal(t, "子供", text.FullText)
}

func TestNormalise_DeletedTextIgnored(t *testing.T) {
	text, err := normalise(t, `
<w:p><w:r><w:t>kept</w:t></w:r><w:del><w:r><w:delText>gone</w:delText></w:r></w:del></w:p>`)
	require.NoError(t, err)

	assert.Equal(t, "kept", text.FullText)
}

func TestNormalise_EmptyBody(t *testing.T) {
	text, err := normalise(t, ` `)
	require.NoError(t, err)
	assert.True(t, text.IsEmpty())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_InvalidZip(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.Document{Content: []byte("not a zip file")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNormalise_MissingDocumentXML(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.Document{Content: createTestDOCX(t, "")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNormalise_MalformedXML(t *testing.T) {
	_, err := normalise(t, `<w:p><w:r><w:t>unclosed`)
	assert.Error(t, err)
}
