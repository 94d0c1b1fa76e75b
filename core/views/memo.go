/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package views

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash/v2"
)

// fingerprint hashes the declared inputs of a stage.
type fingerprint struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newFingerprint(stage Stage) *fingerprint {
	f := &fingerprint{d: xxhash.New()}
	return f.str(string(stage))
}

func (f *fingerprint) u64(v uint64) *fingerprint {
	binary.LittleEndian.PutUint64(f.buf[:], v)
	_, _ = f.d.Write(f.buf[:])
	return f
}

func (f *fingerprint) int(v int) *fingerprint {
	return f.u64(uint64(v))
}

func (f *fingerprint) bool(v bool) *fingerprint {
	if v {
		return f.u64(1)
	}
	return f.u64(0)
}

// str writes the length first so adjacent strings cannot run together.
func (f *fingerprint) str(s string) *fingerprint {
	f.int(len(s))
	_, _ = f.d.WriteString(s)
	return f
}

func (f *fingerprint) sum() uint64 {
	return f.d.Sum64()
}

// memo caches the output of one stage keyed by its input fingerprint.
type memo[T any] struct {
	stage Stage
	key   uint64
	ok    bool
	value T
	runs  int
}

func (m *memo[T]) get(obs Observer, key uint64, compute func() T) T {
	if m.ok && m.key == key {
		obs.ObserveStage(m.stage, true, 0)
		return m.value
	}
	start := time.Now()
	m.value = compute()
	m.key = key
	m.ok = true
	m.runs++
	obs.ObserveStage(m.stage, false, time.Since(start))
	return m.value
}
