package common

// WipeByteArray overwrites the contents of b with zeros. Used for passwords
// and confirmation codes read from the terminal. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// WipeAll wipes every slice in bs.
func WipeAll(bs ...[]byte) {
	for _, b := range bs {
		WipeByteArray(b)
	}
}
