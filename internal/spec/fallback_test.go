package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructure_SimpleRecord(t *testing.T) {
	t.Parallel()

	res := mustParse(t, `<thing><url>/x</url><verb>post</verb></thing>`)
	assert.Equal(t, DialectStructural, res.Dialect)
	require.Len(t, res.Endpoints, 1)
	assert.Equal(t, "/x", res.Endpoints[0].Path)
	assert.Equal(t, POST, res.Endpoints[0].Method)
	assert.Empty(t, res.BaseURL)
	assert.Equal(t, Info{Title: "API Documentation", Version: "1.0.0", Description: "Generated from XML structure"}, res.Info)
}

func TestStructure_TrailFallbackPaths(t *testing.T) {
	t.Parallel()

	res := mustParse(t, `<root>
  <group>
    <op><verb>get</verb></op>
    <op><verb>put</verb><path>/explicit</path></op>
  </group>
  <single><request><x>1</x></request></single>
</root>`)

	assert.Equal(t, []string{
		"GET root/group/op[0]",
		"PUT /explicit",
		"GET root/single",
	}, paths(res))
}

func TestStructure_ContainerAndChildBothEmitted(t *testing.T) {
	t.Parallel()

	res := mustParse(t, `<svc><path>/outer</path><inner><path>/inner</path></inner></svc>`)
	assert.Equal(t, []string{"GET /outer", "GET /inner"}, paths(res))
}

func TestStructure_AttributeRecords(t *testing.T) {
	t.Parallel()

	res := mustParse(t, `<routes><route path="/a" method="get"/><route path="/b" method="post"/></routes>`)
	assert.Equal(t, []string{"GET /a", "POST /b"}, paths(res))
}

func TestStructure_NoEndpoints(t *testing.T) {
	t.Parallel()

	res := mustParse(t, `<config><setting>1</setting><other a="b"/></config>`)
	assert.NotNil(t, res.Endpoints)
	assert.Empty(t, res.Endpoints)
}

func TestStructure_DeepDocument(t *testing.T) {
	t.Parallel()

	const depth = 2000
	src := strings.Repeat("<n>", depth) + "<method>delete</method>" + strings.Repeat("</n>", depth)
	res := mustParse(t, src)

	require.Len(t, res.Endpoints, 1)
	ep := res.Endpoints[0]
	assert.Equal(t, DELETE, ep.Method)
	assert.True(t, strings.HasPrefix(ep.Path, "n/n/n"))
	assert.Equal(t, depth, strings.Count(ep.Path, "n"))
}

func TestStructure_WideDocument(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<ops>")
	for i := 0; i < 1000; i++ {
		b.WriteString(`<op verb="get"/>`)
	}
	b.WriteString("</ops>")

	res := mustParse(t, b.String())
	require.Len(t, res.Endpoints, 1000)
	assert.Equal(t, "ops/op[0]", res.Endpoints[0].Path)
	assert.Equal(t, "ops/op[999]", res.Endpoints[999].Path)
}
