package dispatch

// Obfuscate XORs data in place with key, repeating the key as needed.
// This is reversible obfuscation of the client config blob, not a
// confidentiality mechanism; applying it twice restores the input.
func Obfuscate(data, key []byte) {
	if len(key) == 0 {
		return
	}
	for i := range data {
		data[i] ^= key[i%len(key)]
	}
}
