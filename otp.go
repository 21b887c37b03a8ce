/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package feedchain

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strings"
)

// CodeGenerator issues pickup codes.
type CodeGenerator interface {
	Generate() (string, error)
}

type randomCodeGenerator struct {
	length int
}

// NewRandomCodeGenerator returns a generator of zero padded decimal codes
// drawn from crypto/rand.
func NewRandomCodeGenerator(length int) CodeGenerator {
	if length <= 0 {
		length = 6
	}
	return randomCodeGenerator{length: length}
}

func (g randomCodeGenerator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(g.length)
	ten := big.NewInt(10)
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func codesMatch(expected, given string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
