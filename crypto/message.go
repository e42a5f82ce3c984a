package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
)

// EncryptMessage encrypts plaintext under sharedSecret using AES-256-CBC
// with PKCS#7 padding and a random 16-byte IV. The IV is returned
// separately as nonce, not prefixed to data; the encrypted-message
// appendages carry the two as separate fields.
func EncryptMessage(sharedSecret [32]byte, plaintext []byte) (data []byte, nonce [16]byte, err error) {
	if _, err = rand.Read(nonce[:]); err != nil {
		return nil, nonce, err
	}
	block, err := aes.NewCipher(sharedSecret[:])
	if err != nil {
		return nil, nonce, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, nonce[:]).CryptBlocks(out, padded)
	return out, nonce, nil
}

// DecryptMessage reverses EncryptMessage.
func DecryptMessage(sharedSecret [32]byte, nonce [16]byte, data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errors.New("crypto: ciphertext is not a multiple of the block size")
	}
	block, err := aes.NewCipher(sharedSecret[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, nonce[:]).CryptBlocks(out, data)
	return pkcs7Unpad(out)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+padLen)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errors.New("crypto: empty padded buffer")
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > len(b) {
		return nil, errors.New("crypto: invalid PKCS#7 padding")
	}
	return b[:len(b)-padLen], nil
}
