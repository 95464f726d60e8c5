package format

import (
	"path"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1:    "1st",
		2:    "2nd",
		3:    "3rd",
		4:    "4th",
		11:   "11th",
		12:   "12th",
		13:   "13th",
		21:   "21st",
		22:   "22nd",
		101:  "101st",
		111:  "111th",
		1234: "1,234th",
	}
	for n, want := range cases {
		assert.Equal(t, want, Rank(n), "rank %d", n)
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "1,000", Count(1000))
	assert.Equal(t, "12,345,678", Count(12345678))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, "1.1", Ratio(1.125))
	assert.Equal(t, "0.0", Ratio(0))
	assert.Equal(t, "2.5", Ratio(2.46))
}

func TestCaseInsensitiveGlob(t *testing.T) {
	assert.Equal(t, "[jJ][oO]3", CaseInsensitiveGlob("Jo3"))
	assert.Equal(t, "[aA] [bB]_1", CaseInsensitiveGlob("a B_1"))
	assert.Equal(t, `\*[xX]\?`, CaseInsensitiveGlob("*x?"))
	assert.Equal(t, "É", CaseInsensitiveGlob("É"))
}

func TestCaseInsensitiveGlobMultiByte(t *testing.T) {
	assert.Equal(t, "[jJ]ö[nN][sS]", CaseInsensitiveGlob("Jöns"))
	assert.Equal(t, "Иван", CaseInsensitiveGlob("Иван"))
	assert.Equal(t, "[xX]_ß", CaseInsensitiveGlob("X_ß"))

	// 生成的模式中 [] 内只能是单字节字符
	for _, query := range []string{"Jöns", "Иван", "Zoë the 2nd", "名前a"} {
		pattern := CaseInsensitiveGlob(query)
		inSet := false
		for i := 0; i < len(pattern); i++ {
			switch c := pattern[i]; {
			case c == '[':
				inSet = true
			case c == ']':
				inSet = false
			case inSet:
				assert.Less(t, c, byte(utf8.RuneSelf), "query %q pattern %q", query, pattern)
			}
		}
	}
}

func TestCaseInsensitiveGlobMatchesNonASCIIName(t *testing.T) {
	pattern := "*" + CaseInsensitiveGlob("jöns") + "*"
	for _, name := range []string{"Jöns", "JöNS", "xx jöns yy"} {
		ok, err := path.Match(pattern, name)
		assert.NoError(t, err)
		assert.True(t, ok, name)
	}
}

func TestCaseInsensitiveGlobMatchesAllCases(t *testing.T) {
	pattern := "*" + CaseInsensitiveGlob("Jo3") + "*"
	for _, name := range []string{"jo3", "JO3", "Jo3", "xxjO3yy"} {
		ok, err := path.Match(pattern, name)
		assert.NoError(t, err)
		assert.True(t, ok, name)
	}
	ok, _ := path.Match(pattern, "jo4")
	assert.False(t, ok)
}
