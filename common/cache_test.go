// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/fund-investigator/fi-api/common"
)

var _ = Describe("Cache tests", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		viper.Set("cache.local_size", 8)
		viper.Set("cache.redis", false)
	})

	Context("compression", func() {
		It("round-trips a payload", func() {
			payload := []byte(`{"name":"VTSAX","cagr":0.0821}`)
			compressed, err := common.Compress(payload)
			Expect(err).To(BeNil())

			restored, err := common.Decompress(compressed)
			Expect(err).To(BeNil())
			Expect(restored).To(Equal(payload))
		})

		It("shrinks repetitive payloads", func() {
			payload := bytes.Repeat([]byte("0.012345,"), 1024)
			compressed, err := common.Compress(payload)
			Expect(err).To(BeNil())
			Expect(len(compressed)).Should(BeNumerically("<", len(payload)))
		})
	})

	Context("cache keys", func() {
		It("is deterministic for identical parts", func() {
			one := common.CacheKey([]byte("VTSAX"), []byte("metrics"))
			two := common.CacheKey([]byte("VTSAX"), []byte("metrics"))
			Expect(one).To(Equal(two))
		})

		It("differs when any part changes", func() {
			one := common.CacheKey([]byte("VTSAX"), []byte("metrics"))
			two := common.CacheKey([]byte("VFIAX"), []byte("metrics"))
			three := common.CacheKey([]byte("VTSAX"), []byte("drawdowns"))
			Expect(one).ToNot(Equal(two))
			Expect(one).ToNot(Equal(three))
		})

		It("is hex encoded", func() {
			key := common.CacheKey([]byte("VTSAX"))
			Expect(key).To(MatchRegexp("^[0-9a-f]+$"))
		})
	})

	Context("local tier", func() {
		It("stores and retrieves values", func() {
			cache, err := common.NewCache()
			Expect(err).To(BeNil())

			key := common.CacheKey([]byte("VTSAX"), []byte("metrics"))
			Expect(cache.Set(ctx, key, []byte("result"))).To(Succeed())

			val, ok := cache.Get(ctx, key)
			Expect(ok).To(BeTrue())
			Expect(val).To(Equal([]byte("result")))
		})

		It("misses on unknown keys", func() {
			cache, err := common.NewCache()
			Expect(err).To(BeNil())

			_, ok := cache.Get(ctx, "unknown")
			Expect(ok).To(BeFalse())
		})

		It("forgets invalidated keys", func() {
			cache, err := common.NewCache()
			Expect(err).To(BeNil())

			key := common.CacheKey([]byte("VTSAX"))
			Expect(cache.Set(ctx, key, []byte("result"))).To(Succeed())
			cache.Invalidate(ctx, key)

			_, ok := cache.Get(ctx, key)
			Expect(ok).To(BeFalse())
		})

		It("evicts the oldest entry past capacity", func() {
			viper.Set("cache.local_size", 2)
			cache, err := common.NewCache()
			Expect(err).To(BeNil())

			Expect(cache.Set(ctx, "a", []byte("1"))).To(Succeed())
			Expect(cache.Set(ctx, "b", []byte("2"))).To(Succeed())
			Expect(cache.Set(ctx, "c", []byte("3"))).To(Succeed())

			_, ok := cache.Get(ctx, "a")
			Expect(ok).To(BeFalse())
			val, ok := cache.Get(ctx, "c")
			Expect(ok).To(BeTrue())
			Expect(val).To(Equal([]byte("3")))
		})
	})
})
