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
// Package binding maps request data onto Go values for router handlers.
//
// Values come from four sources: path parameters, the query string,
// headers and the request body. Scalar sources are decoded with struct
// tags named after the source; conversion is weakly typed so "42" fills an
// int field and a single value fills a slice.
//
//	type ListParams struct {
//	    Page  int           `query:"page"`
//	    Tags  []string      `query:"tag"`
//	    Wait  time.Duration `query:"wait"`
//	    Trace string        `header:"X-Trace"`
//	}
//
//	params, err := binding.Query[ListParams](c)
//
// # Bodies
//
// Body picks a codec from the Content-Type header. JSON, XML, YAML, TOML,
// MessagePack, Protocol Buffers and both form encodings are registered by
// default; RegisterCodec adds or replaces media types. A request without a
// Content-Type is decoded as JSON.
//
//	in, err := binding.Body[CreateOrder](c)
//	if err != nil {
//	    c.AbortWithError(err)
//	    return
//	}
//
// # Errors
//
// Every error returned is ready for the engine error pipeline: malformed
// input is a 400 router.HTTPError, an unknown media type 415, an oversized
// body router.ErrBodyTooLarge (413) and failed `validate` tags a
// router.ValidationError (422).
package binding
