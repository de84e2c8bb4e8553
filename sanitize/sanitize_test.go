package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const comment = "@S.Jovan The expected result should look sth. like this:\n[\n{ \"\"key1\"\": str10, \"\"key2\"\": str20, \"\"key3\"\": str30 },\n{ \"\"key1\"\": str11, \"\"key2\"\": str21, \"\"key3\"\": str31 },\n{ \"\"key1\"\": str12, \"\"key2\"\": str22, \"\"key3\"\": str32 },\n..."

const (
	postBaseText      = "Hi, I have a problem. Here is my code:%s%s%sCan anyone help me?"
	codeSegment       = "<code> for i in range(10):\n    print(10)\n#wupwup!</code>"
	preSegment        = "<pre> for val in elems:\n\n\n    #do something\nprint(val)</pre>"
	blockquoteSegment = `<blockquote>Gzipped data: \x1f\x8b\x08\x00\xf9w[Y\x02\xff%\x8e=\x0e\xc30\x08F\xaf\x82\x98\x91\x05\xe6\xc7\xa6c\xf7\x9e\xa0\xca\x96\xa5[\x86lQ\xee^\xdcN\xf0\xf4\xc1\x83\x0b?\xf8\x00|=\xe7D\x02<\n\xde\x17\xee\xab\xb85%\x82L\x02\xcb\xa6N\xa0\x7fri\xae\xd5K\xe1$\xe83\xc3\x08\x86Z\x81\xa9g-y\x88\xf6\x9a\xf5E\xde\x99\x7f\x96\xb1\xd5\x99\xb3\xfcb\x99\x121D\x1bG\xe7^.\xdcWPO\xdc\xdb\xfd\x05\x0ev\x15\x1d\x99\x00\x00\x00</blockquote>`

	httpsURL = "https://hello.world#aweseaf45we23.com"
	httpURL  = "http://blabla.com#badonk"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

func basePost(a, b, c string) string {
	return fmt.Sprintf(postBaseText, a, b, c)
}

func mustPost(t *testing.T, text string) string {
	t.Helper()
	out, err := Post(text)
	require.NoError(t, err)
	return out
}

func mustComment(t *testing.T, text string) string {
	t.Helper()
	out, err := Comment(text)
	require.NoError(t, err)
	return out
}

func assertSingleSpaces(t *testing.T, text string) {
	t.Helper()
	runs := whitespaceRun.FindAllString(text, -1)
	require.NotEmpty(t, runs)
	for _, ws := range runs {
		assert.Equal(t, " ", ws)
	}
}

func TestPostMarkdownCodePatternIsNotGreedy(t *testing.T) {
	post := "`this is code` but a greedy```other code``` pattern\nwould remove" +
		"`this whole post`" +
		"```along with``` this as well```hehe```"

	assert.Equal(t, "but a greedy pattern would remove this as well", mustPost(t, post))
}

func TestPostReplacesAllWhitespaceWithSingleSpaces(t *testing.T) {
	assertSingleSpaces(t, mustPost(t, basePost(codeSegment, preSegment, blockquoteSegment)))
}

func TestPostRemovesURL(t *testing.T) {
	text := fmt.Sprintf("%s and other stuff %s awesome donk %s\n\nhurrdurr", comment, httpsURL, httpURL)
	sanitized := mustPost(t, text)

	assert.NotContains(t, sanitized, httpsURL)
	assert.NotContains(t, sanitized, httpURL)
	assert.Contains(t, sanitized, "hurrdurr")
}

func TestPostRemovesBacktickCode(t *testing.T) {
	for _, code := range []string{"`for i in range(10):\n    print(i)`", "```for i in range(10):\n    print(i)```"} {
		text := fmt.Sprintf("%s blablabla bla 234 d23r23 %s\nAnd just the finishing touch.", comment, code)
		sanitized := mustPost(t, text)

		assert.NotContains(t, sanitized, "`")
		assert.NotContains(t, sanitized, "for i in range")
		assert.NotContains(t, sanitized, "range(10)")
		assert.True(t, strings.HasSuffix(sanitized, "And just the finishing touch."))
	}
}

func TestPostRemovesBlockquoteSegments(t *testing.T) {
	text := basePost(blockquoteSegment, "\n", "")
	assert.Equal(t, basePost("", " ", ""), mustPost(t, text))
}

func TestPostRemovesLinefeeds(t *testing.T) {
	text := "This is a text with \r\n some \u2028 nbbbb \u2029 random \n linefeeds \r and carriege returns \r\n hello \n"
	sanitized := mustPost(t, text)

	for _, c := range []string{"\n", "\r", "\u2028", "\u2029"} {
		assert.NotContains(t, sanitized, c)
	}
	assert.Equal(t, "This is a text with some nbbbb random linefeeds and carriege returns hello", sanitized)
}

func TestPostRemovesCodeAndPreSegments(t *testing.T) {
	// the two newlines are replaced with single space
	assert.Equal(t, basePost(" ", "", ""), mustPost(t, basePost("\n", codeSegment, "\n")))
	assert.Equal(t, basePost(" ", "", ""), mustPost(t, basePost("\n", preSegment, "\n")))
}

func TestPostRemovesCodePreAndTags(t *testing.T) {
	text := basePost("</a href=https://url.com>", codeSegment, preSegment)
	assert.Equal(t, basePost("", "", ""), mustPost(t, text))
}

func TestPostHandlesTagCaseMismatch(t *testing.T) {
	text := `<p><em>"I didn't like this because I have only two C files and it seemed very odd to split the source base at the language level like this"</em></p>

<p>Why does it seem odd? Consider this project:</p>

<pre>
  project1\src\java
  project1\src\cpp
  project1\src\python
</pre>

<p>Or, if you decide to split things up into modules:</p>

<p><pre>
  project1\module1\src\java
  project1\module1\src\cpp
  project1\module2\src\java
  project1\module2\src\python
</prE></p>

<p>I guess it's a matter of personal taste, but the above structure is fairly common, and I think it works quite well once you get used to it.</p>`

	done := make(chan string, 1)
	go func() {
		out, _ := Post(text)
		done <- out
	}()

	select {
	case out := <-done:
		assert.NotContains(t, out, "project1")
		assert.True(t, strings.HasPrefix(out, `"I didn't like this`))
	case <-time.After(2 * time.Second):
		t.Fatal("sanitizing post with mismatching tag case did not finish in time")
	}
}

func TestPostRealAnswer(t *testing.T) {
	text := `<p>You can do this in just two lines.</p>

    <pre><code>with open('path/to/file') as f:
        line_lists = [list(line.strip()) for line in f]
    </code></pre>

    <p><code>list</code> on a <code>str</code> object will return a list where each character is an element (as a <code>char</code>). <code>line</code> is stripped first, which removes leading and trailing whitespace. This is assuming that you actually want the characters as <code>char</code>. If you want them parsed to <code>int</code>, this will work:</p>

    <pre><code>with open('path/to/file') as f:
        line_lists = [[int(x) for x in line.strip()] for line in f]
    </code></pre>

    <p>Mind you that there should be some error checking here, the above example will crash if any of the characters cannot be parsed to int.</p>
    `
	expected := "You can do this in just two lines. on a object will return a list where each character is an element (as a ). is stripped first, which removes leading and trailing whitespace. This is assuming that you actually want the characters as . If you want them parsed to , this will work: Mind you that there should be some error checking here, the above example will crash if any of the characters cannot be parsed to int."

	assert.Equal(t, expected, mustPost(t, text))
}

func TestCommentReplacesAllWhitespaceWithSingleSpaces(t *testing.T) {
	assertSingleSpaces(t, mustComment(t, comment))
}

func TestCommentRemovesURL(t *testing.T) {
	text := fmt.Sprintf("%s and other stuff %s awesome donk %s\n\nhurrdurr", comment, httpsURL, httpURL)
	sanitized := mustComment(t, text)

	assert.NotContains(t, sanitized, httpsURL)
	assert.NotContains(t, sanitized, httpURL)
}

func TestCommentLeavesUserMentions(t *testing.T) {
	assert.Contains(t, mustComment(t, comment), "@S.Jovan")
}

func TestCommentStripsLeadingAndTrailingWhitespace(t *testing.T) {
	sanitized := mustComment(t, "   there is leading whitespace here <code>some\ncode</code>  ")
	assert.Equal(t, strings.TrimSpace(sanitized), sanitized)
	assert.Equal(t, "there is leading whitespace here", sanitized)
}

func TestCommentRemovesBacktickCode(t *testing.T) {
	for _, code := range []string{"`for i in range(10):\n    print(i)`", "```for i in range(10):\n    print(i)```"} {
		text := fmt.Sprintf("%s blablabla bla 234 d23r23 %s\nAnd just the finishing touch.", comment, code)
		sanitized := mustComment(t, text)

		assert.NotContains(t, sanitized, "`")
		assert.NotContains(t, sanitized, "for i in range")
		assert.NotContains(t, sanitized, "range(10)")
	}
}

func TestCommentRemovesMarkdownFormatting(t *testing.T) {
	randomMD := "This is ```for i in range(t)``` just a **test** to see that _some_ `inline code` and **other\nmarkdown** stuff is removed."
	sanitizedMD := "This is just a test to see that some and other markdown stuff is removed."

	assert.Equal(t, basePost("", sanitizedMD, ""), mustComment(t, basePost("", randomMD, "")))
}

func TestResultIsNFCNormalized(t *testing.T) {
	// "e" followed by combining acute accent
	sanitized := mustPost(t, "<p>cafe\u0301</p>")
	assert.Equal(t, "caf\u00e9", sanitized)
}
