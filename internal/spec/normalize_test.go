package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecord_PathAndMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		fallback string
		path     string
		method   HttpMethod
	}{
		{"explicit", `<e><path>/p</path><method>put</method></e>`, "trail", "/p", PUT},
		{"url and verb", `<e url="/u" verb="delete"/>`, "", "/u", DELETE},
		{"endpoint and httpMethod", `<e><endpoint>/x</endpoint><httpMethod>Head</httpMethod></e>`, "", "/x", HEAD},
		{"fallback path", `<e><method>post</method></e>`, "a/b[1]", "a/b[1]", POST},
		{"root default", `<e><summary>s</summary></e>`, "", "/", GET},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := normalizeRecord(mustRoot(t, tt.src), tt.fallback)
			assert.Equal(t, tt.path, ep.Path)
			assert.Equal(t, tt.method, ep.Method)
		})
	}
}

func TestNormalizeRecord_Description(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "d", normalizeRecord(mustRoot(t, `<e><doc>x</doc><description>d</description></e>`), "").Description)
	assert.Equal(t, "s", normalizeRecord(mustRoot(t, `<e><doc>x</doc><summary>s</summary></e>`), "").Description)
	assert.Equal(t, "x", normalizeRecord(mustRoot(t, `<e doc="x"/>`), "").Description)
}

func TestNormalizeRecord_Parameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []Parameter
	}{
		{
			name: "single wrapped param",
			src:  `<e><params><param key="q" type="Email"/></params></e>`,
			want: []Parameter{{Name: "q", Type: ParamType{Kind: TypeEmail, Raw: "Email"}}},
		},
		{
			name: "repeated containers",
			src:  `<e><parameters name="a"/><parameters name="b" required="true"/></e>`,
			want: []Parameter{
				{Name: "a", Type: ParamType{Kind: TypeString, Raw: "string"}},
				{Name: "b", Type: ParamType{Kind: TypeString, Raw: "string"}, Required: true},
			},
		},
		{
			name: "unnamed scalar",
			src:  `<e><params>token</params></e>`,
			want: []Parameter{{Name: "param", Type: ParamType{Kind: TypeString, Raw: "string"}}},
		},
		{
			name: "duplicates kept",
			src:  `<e><parameters><parameter name="x"/><parameter name="x" description="again"/></parameters></e>`,
			want: []Parameter{
				{Name: "x", Type: ParamType{Kind: TypeString, Raw: "string"}},
				{Name: "x", Type: ParamType{Kind: TypeString, Raw: "string"}, Description: "again"},
			},
		},
		{
			name: "required is literal",
			src:  `<e><parameters><parameter name="x" required="yes"/></parameters></e>`,
			want: []Parameter{{Name: "x", Type: ParamType{Kind: TypeString, Raw: "string"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := normalizeRecord(mustRoot(t, tt.src), "")
			assert.Equal(t, tt.want, ep.Parameters)
		})
	}
}

func TestNormalizeRecord_Body(t *testing.T) {
	t.Parallel()

	ep := normalizeRecord(mustRoot(t, `<e><payload><example>{"a":1}</example></payload><body contentType="text/plain"/></e>`), "")
	require.NotNil(t, ep.RequestBody)
	assert.Equal(t, "text/plain", ep.RequestBody.ContentType, "body outranks payload")

	ep = normalizeRecord(mustRoot(t, `<e><requestBody>{"raw":true}</requestBody></e>`), "")
	require.NotNil(t, ep.RequestBody)
	assert.Equal(t, "application/json", ep.RequestBody.ContentType)
	assert.Nil(t, ep.RequestBody.Example, "body text is not an example")
	assert.Nil(t, ep.RequestBody.Schema)
}

func TestNormalizeRecord_ResponseMapping(t *testing.T) {
	t.Parallel()

	ep := normalizeRecord(mustRoot(t, `<e><responses>
  <ok><description>Fine</description><example>yes</example></ok>
  <missing/>
</responses></e>`), "")

	var keys []string
	for k := range ep.Responses.Keys() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"ok", "missing"}, keys)
	ok, _ := ep.Responses.Get("ok")
	assert.Equal(t, Response{Description: "Fine", Example: "yes"}, ok)
	missing, _ := ep.Responses.Get("missing")
	assert.Equal(t, "Response", missing.Description)
}

func TestNormalizeRecord_ResponseItems(t *testing.T) {
	t.Parallel()

	ep := normalizeRecord(mustRoot(t, `<e>
  <response status="201" description="Created"/>
  <response><statusCode>400</statusCode></response>
  <response status="201" description="Again"/>
</e>`), "")

	assert.Equal(t, 2, ep.Responses.Len())
	created, _ := ep.Responses.Get("201")
	assert.Equal(t, "Again", created.Description)
	bad, _ := ep.Responses.Get("400")
	assert.Equal(t, "Response", bad.Description)
}

func TestNormalizeRecord_Tags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, normalizeRecord(mustRoot(t, `<e><tags>a, b,</tags></e>`), "").Tags)
	assert.Equal(t, []string{"x", "y"}, normalizeRecord(mustRoot(t, `<e><tag>x</tag><tag>y</tag></e>`), "").Tags)
	assert.Equal(t, []string{"admin"}, normalizeRecord(mustRoot(t, `<e tags="admin"/>`), "").Tags)
	assert.Empty(t, normalizeRecord(mustRoot(t, `<e/>`), "").Tags)
}
