package accounts

import (
	"crypto/rand"
	"math"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	// codeLength gives 21 * 6 = 126 bits of entropy, on par with a v4 UUID.
	codeLength = 21
)

// NanoIDIssuer generates URL-safe, collision-resistant one-time codes from
// crypto/rand using rejection sampling over a 64-character alphabet.
type NanoIDIssuer struct {
	alphabet string
	size     int
	mask     byte
}

var _ CodeIssuer = (*NanoIDIssuer)(nil)

// NewCodeIssuer returns a NanoIDIssuer with the default alphabet and length.
func NewCodeIssuer() *NanoIDIssuer {
	return &NanoIDIssuer{
		alphabet: codeAlphabet,
		size:     codeLength,
		mask:     alphabetMask(len(codeAlphabet)),
	}
}

func alphabetMask(alphabetLen int) byte {
	for i := 1; i <= 8; i++ {
		mask := (2 << uint(i)) - 1
		if mask >= alphabetLen-1 {
			return byte(mask)
		}
	}
	return 0xFF
}

// Issue returns a fresh random code.
func (n *NanoIDIssuer) Issue() (string, error) {
	alphabetLen := len(n.alphabet)
	step := int(math.Ceil(1.6 * float64(int(n.mask)*n.size) / float64(alphabetLen)))

	id := make([]byte, n.size)
	buffer := make([]byte, step)

	for position := 0; position < n.size; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}

		for i := 0; i < step && position < n.size; i++ {
			index := buffer[i] & n.mask
			if int(index) < alphabetLen {
				id[position] = n.alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}
