/*
Copyright 2012 The Camlistore Authors.

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

// Package chanworker provides a bounded worker pool fed by a buffered
// channel, used by the pipeline's analyse phase to run a fixed number
// of goroutines over a stream of items.
package chanworker

import (
	"container/list"
)

// buffered is the pump's internal queue headroom, so a burst of
// enumerated entries doesn't immediately block the producer.
const buffered = 16

// NewWorker starts nWorkers goroutines, each running fn on items sent
// on the returned channel. fn may block; sends to the channel buffer
// ahead of the workers via an internal unbounded queue. When the
// returned channel is closed and every in-flight item has been
// processed, fn is called once more with (nil, false) as the final
// sentinel. NewWorker panics if nWorkers is not positive — unlike its
// ancestor, the pipeline never wants an unbounded fan-out.
func NewWorker(nWorkers int, fn func(item interface{}, ok bool)) chan<- interface{} {
	if nWorkers <= 0 {
		panic("chanworker.NewWorker: nWorkers must be positive")
	}
	retc := make(chan interface{}, buffered)
	w := &pool{
		in:    retc,
		workc: make(chan interface{}, buffered),
		donec: make(chan bool),
		fn:    fn,
		buf:   list.New(),
	}
	go w.pump()
	for i := 0; i < nWorkers; i++ {
		go w.work()
	}
	go func() {
		for i := 0; i < nWorkers; i++ {
			<-w.donec
		}
		fn(nil, false)
	}()
	return retc
}

type pool struct {
	in    chan interface{}
	workc chan interface{}
	donec chan bool
	fn    func(item interface{}, ok bool)
	buf   *list.List
}

// pump relays from the unbounded producer-facing channel `in` into
// the bounded `workc` the workers read from, queuing in buf whenever
// every worker is busy.
func (w *pool) pump() {
	inc := w.in
	for inc != nil || w.buf.Len() > 0 {
		outc := w.workc
		var front interface{}
		if e := w.buf.Front(); e != nil {
			front = e.Value
		} else {
			outc = nil
		}
		select {
		case outc <- front:
			w.buf.Remove(w.buf.Front())
		case item, ok := <-inc:
			if !ok {
				inc = nil
				continue
			}
			w.buf.PushBack(item)
		}
	}
	close(w.workc)
}

func (w *pool) work() {
	for item := range w.workc {
		w.fn(item, true)
	}
	w.donec <- true
}
