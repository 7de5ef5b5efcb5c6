// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lifecycle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kingwill101/routed-sub001/lifecycle"
)

func newRequest(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

var _ = Describe("Manager", func() {
	var m *lifecycle.Manager

	BeforeEach(func() {
		m = lifecycle.New(lifecycle.WithAllowPaths("/healthz"))
	})

	Describe("graceful drain", func() {
		It("waits for every in-flight request", func() {
			ids := make([]string, 0, 3)
			for range 3 {
				id, _, err := m.Begin(newRequest("/work"))
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, id)
			}
			Expect(m.Active()).To(Equal(3))

			result := make(chan error, 1)
			go func() { result <- m.Drain(context.Background(), 5*time.Second) }()

			Consistently(result, 100*time.Millisecond).ShouldNot(Receive())
			Expect(m.State()).To(Equal(lifecycle.StateDraining))

			m.End(ids[0])
			m.End(ids[1])
			Consistently(result, 50*time.Millisecond).ShouldNot(Receive())

			m.End(ids[2])
			Eventually(result).Should(Receive(BeNil()))
			Expect(m.Active()).To(BeZero())
		})

		It("returns immediately when nothing is running", func() {
			Expect(m.Drain(context.Background(), time.Second)).To(Succeed())
		})

		It("rejects new requests except allow-listed paths", func() {
			id, _, err := m.Begin(newRequest("/slow"))
			Expect(err).NotTo(HaveOccurred())
			defer m.End(id)

			m.StartDrain()

			_, _, err = m.Begin(newRequest("/new"))
			Expect(err).To(MatchError(lifecycle.ErrDraining))

			hid, _, err := m.Begin(newRequest("/healthz"))
			Expect(err).NotTo(HaveOccurred())
			m.End(hid)
		})
	})

	Describe("admission under concurrent shutdown", func() {
		It("never admits a request after Drain has reported completion", func() {
			var (
				drained atomic.Bool
				late    atomic.Int64
				stop    = make(chan struct{})
				wg      sync.WaitGroup
			)
			for range 8 {
				wg.Go(func() {
					for {
						select {
						case <-stop:
							return
						default:
						}
						id, _, err := m.Begin(newRequest("/work"))
						if err != nil {
							continue
						}
						if drained.Load() {
							late.Add(1)
						}
						m.End(id)
					}
				})
			}

			time.Sleep(10 * time.Millisecond)
			Expect(m.Drain(context.Background(), 5*time.Second)).To(Succeed())
			drained.Store(true)
			time.Sleep(10 * time.Millisecond)
			close(stop)
			wg.Wait()

			Expect(late.Load()).To(BeZero())
			Expect(m.Active()).To(BeZero())
		})

		It("leaves nothing running after a force close", func() {
			var (
				stop = make(chan struct{})
				wg   sync.WaitGroup
				reqs = make(chan *http.Request, 1<<16)
			)
			for range 8 {
				wg.Go(func() {
					for {
						select {
						case <-stop:
							return
						default:
						}
						if _, req, err := m.Begin(newRequest("/work")); err == nil {
							reqs <- req
							return
						}
					}
				})
			}

			m.ForceClose()
			close(stop)
			wg.Wait()
			close(reqs)

			Expect(m.Active()).To(BeZero())
			for req := range reqs {
				Expect(req.Context().Err()).To(MatchError(context.Canceled))
			}
		})
	})

	Describe("grace expiry", func() {
		It("force-closes requests that outlive the grace period", func() {
			var closed atomic.Int32
			m.OnForceClose(func() { closed.Add(1) })

			_, req, err := m.Begin(newRequest("/stuck"))
			Expect(err).NotTo(HaveOccurred())

			err = m.Drain(context.Background(), 50*time.Millisecond)
			Expect(err).To(MatchError(lifecycle.ErrGraceExpired))
			Expect(req.Context().Err()).To(MatchError(context.Canceled))
			Expect(m.Active()).To(BeZero())
			Expect(m.State()).To(Equal(lifecycle.StateClosed))
			Expect(closed.Load()).To(Equal(int32(1)))
			Eventually(m.Forced()).Should(BeClosed())

			_, _, err = m.Begin(newRequest("/healthz"))
			Expect(err).To(MatchError(lifecycle.ErrClosed))
		})
	})

	Describe("force close", func() {
		It("is idempotent and safe alongside normal completion", func() {
			var closed atomic.Int32
			m.OnForceClose(func() { closed.Add(1) })

			ids := make([]string, 0, 50)
			for range 50 {
				id, _, err := m.Begin(newRequest("/work"))
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, id)
			}

			var wg sync.WaitGroup
			for _, id := range ids {
				wg.Add(1)
				go func() {
					defer wg.Done()
					m.End(id)
				}()
			}
			for range 10 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					m.ForceClose()
				}()
			}

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			Eventually(done, 2*time.Second).Should(BeClosed())

			Expect(closed.Load()).To(Equal(int32(1)))
			Expect(m.Active()).To(BeZero())
			Expect(m.ForceClose()).To(BeZero())
		})

		It("supersedes a pending drain", func() {
			_, _, err := m.Begin(newRequest("/stuck"))
			Expect(err).NotTo(HaveOccurred())

			result := make(chan error, 1)
			go func() { result <- m.Drain(context.Background(), time.Minute) }()

			Consistently(result, 50*time.Millisecond).ShouldNot(Receive())
			Expect(m.ForceClose()).To(Equal(1))
			Eventually(result).Should(Receive(BeNil()))
		})

		It("recovers from a panicking close hook", func() {
			var after atomic.Bool
			m.OnForceClose(func() { panic("boom") })
			m.OnForceClose(func() { after.Store(true) })

			Expect(func() { m.ForceClose() }).NotTo(Panic())
			Expect(after.Load()).To(BeTrue())
		})
	})
})
