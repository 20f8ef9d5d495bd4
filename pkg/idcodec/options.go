package idcodec

type Option func(*Codec)

func MinLength(n int) Option {
	return func(c *Codec) {
		c.minLength = n
	}
}

// Alphabet replaces the default case-sensitive letters+digits alphabet,
// e.g. to drop visually ambiguous characters. It needs at least 16 unique runes.
func Alphabet(alphabet string) Option {
	return func(c *Codec) {
		c.alphabet = alphabet
	}
}
