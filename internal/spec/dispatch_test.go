package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ParseResult {
	t.Helper()
	res, err := Parse([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestInterpret_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want Dialect
	}{
		{"wadl root", `<wadl/>`, DialectWADL},
		{"application root", `<application xmlns="http://wadl.dev.java.net/2009/02"/>`, DialectWADL},
		{"api root", `<api/>`, DialectAPI},
		{"endpoints root", `<endpoints/>`, DialectEndpoints},
		{"resources root", `<resources/>`, DialectEndpoints},
		{"prefixed root", `<x:api xmlns:x="urn:x"/>`, DialectAPI},
		{"names are case sensitive", `<API/>`, DialectStructural},
		{"unknown root", `<catalog><item/></catalog>`, DialectStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.src)
			assert.Equal(t, tt.want, res.Dialect)
			assert.NotNil(t, res.Endpoints)
		})
	}
}

func TestInterpret_NilDocument(t *testing.T) {
	t.Parallel()

	res := Interpret(nil)
	require.NotNil(t, res)
	assert.Empty(t, res.Endpoints)
	assert.Equal(t, DialectStructural, res.Dialect)
}

func TestParse_MethodsAlwaysUppercase(t *testing.T) {
	t.Parallel()

	docs := []string{
		`<application><resources><resource path="/a"><method name="get"/><method/></resource></resources></application>`,
		`<api><endpoints><endpoint><path>/a</path><method>patch</method></endpoint><endpoint path="/b"/></endpoints></api>`,
		`<endpoints><endpoint verb="delete" path="/c"/></endpoints>`,
		`<svc><op><url>/d</url><httpMethod>options</httpMethod></op><op><request/><response>ok</response></op></svc>`,
	}
	for _, src := range docs {
		res := mustParse(t, src)
		require.NotEmpty(t, res.Endpoints, src)
		for _, ep := range res.Endpoints {
			assert.NotEmpty(t, ep.Method)
			assert.Equal(t, strings.ToUpper(string(ep.Method)), string(ep.Method))
			assert.NotEmpty(t, ep.Path)
			assert.NotNil(t, ep.Parameters)
			assert.NotNil(t, ep.Responses)
		}
	}
}
