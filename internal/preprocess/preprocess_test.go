package preprocess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
	"git.home.luguber.info/inful/yassg/internal/urls"
)

func fixture(t *testing.T) *page.Page {
	t.Helper()
	blog := page.New("blog", "", map[string]any{page.DetailTitle: "Blog"})
	require.NoError(t, blog.AddChild(page.New("post1", "", map[string]any{page.DetailTitle: "Post <1>"})))
	root, err := page.NewRoot(
		page.New("index", "", map[string]any{page.DetailTitle: "Home"}),
		page.New("about", "", map[string]any{page.DetailTitle: "About"}),
		blog,
	)
	require.NoError(t, err)
	return root
}

func newContext(t *testing.T, active *page.Page, trailing bool) *Context {
	t.Helper()
	reg := shortcode.NewRegistry()
	require.NoError(t, shortcode.RegisterBuiltins(reg))
	return &Context{
		Page:       active,
		Resolver:   urls.New(trailing, "html"),
		Shortcodes: reg,
	}
}

func TestProcess_CrossReferences(t *testing.T) {
	root := fixture(t)
	ctx := newContext(t, root.Find("about"), true)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"label only", "See [[blog]].", `See <a href="../blog/">Blog</a>.`},
		{"explicit text", "Read [[the post]](blog/post1) now", `Read <a href="../blog/post1/">the post</a> now`},
		{"title escaped", "[[blog/post1]]", `<a href="../blog/post1/">Post &lt;1&gt;</a>`},
		{"fragment", "[[Install]](blog#install)", `<a href="../blog/#install">Install</a>`},
		{"index label", "[[Home]](index)", `<a href="../">Home</a>`},
		{"directory index label", "[[blog/index]]", `<a href="../blog/">Blog</a>`},
		{"broken", "See [[nonexistent]] later", "See [[nonexistent]] later"},
		{"broken with text", "[[x]](missing/page)", "[[x]](missing/page)"},
		{"escaped", `Literal \[[blog]] here`, "Literal [[blog]] here"},
		{"escaped with text", `\[[t]](blog)`, "[[t]](blog)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New().Process(tt.in, ctx)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestProcess_CrossReferencesFlat(t *testing.T) {
	root := fixture(t)
	ctx := newContext(t, root.Find("blog/post1"), false)

	out, err := New().Process("[[about]] and [[blog]]", ctx)
	require.NoError(t, err)
	require.Equal(t, `<a href="../about.html">About</a> and <a href="../blog.html">Blog</a>`, out)
}

func TestProcess_Shortcodes(t *testing.T) {
	root := fixture(t)
	ctx := newContext(t, root.Find("about"), true)

	out, err := New().Process(`# {{ title("hello world") }} / {{upper( "x" )}}`, ctx)
	require.NoError(t, err)
	require.Equal(t, "# Hello World / X", out)

	out, err = New().Process(`Use \{{ title("x") }} to title-case.`, ctx)
	require.NoError(t, err)
	require.Equal(t, `Use {{ title("x") }} to title-case.`, out)

	out, err = New().Process(`Logo: {{ url("static/logo.png") }}`, ctx)
	require.NoError(t, err)
	require.Equal(t, "Logo: ../static/logo.png", out)
}

func TestProcess_ShortcodeArgumentsMayContainDelimiters(t *testing.T) {
	root := fixture(t)
	ctx := newContext(t, root.Find("about"), true)

	out, err := New().Process(`A {{ title(") }}") }} B {{ upper('x)') }} C`, ctx)
	require.NoError(t, err)
	require.Equal(t, "A ) }} B X) C", out)

	_, err = New().Process(`broken {{ title(") }} call`, ctx)
	var ce *shortcode.CallError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "title", ce.Name)
}

func TestProcess_UnknownShortcodeIsFatal(t *testing.T) {
	root := fixture(t)
	ctx := newContext(t, root.Find("about"), true)

	_, err := New().Process("before {{ nope(1) }} after", ctx)
	var ce *shortcode.CallError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "nope", ce.Name)
}

func TestProcess_NonCallBracesUntouched(t *testing.T) {
	root := fixture(t)
	ctx := newContext(t, root.Find("about"), true)

	in := "Template syntax {{ .Title }} and {{ }} stay."
	out, err := New().Process(in, ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestNew_OrdersPassesByPriority(t *testing.T) {
	require.Equal(t, []string{"crossrefs", "shortcodes"}, New(Shortcodes{}, CrossRefs{}).Passes())
}

func TestLookup(t *testing.T) {
	root := fixture(t)
	require.Equal(t, "index", Lookup(root, "").Path())
	require.Equal(t, "index", Lookup(root, "/").Path())
	require.Equal(t, "blog/post1", Lookup(root, "/blog/post1/").Path())
	require.Equal(t, "blog", Lookup(root, "blog/index").Path())
	require.Nil(t, Lookup(root, "blog/post2"))
}
