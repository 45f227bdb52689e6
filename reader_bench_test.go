// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package xjson_test

import (
	"io"
	"strings"
	"testing"

	"github.com/creachadair/xjson"
)

const benchDoc = `{
  "id": 91827364,
  "name": "Grace Hopper",
  "active": true,
  "tags": ["compiler", "navy", "cobol"],
  "scores": [98.5, 87.25, 100, -3.5e2],
  "address": {"city": "Arlington", "zip": null},
  "notes": "the \"amazing grace\" of — computing"
}`

func BenchmarkStructuredDecode(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := xjson.NewReader(strings.NewReader(benchDoc))
		if err := decodeBenchDoc(r); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func decodeBenchDoc(r *xjson.Reader) error {
	if err := r.BeginObject(); err != nil {
		return err
	}
	for {
		has, err := r.HasNext()
		if err != nil {
			return err
		}
		if !has {
			break
		}
		name, err := r.NextName()
		if err != nil {
			return err
		}
		kind, err := r.Peek()
		if err != nil {
			return err
		}
		switch {
		case name == "tags" || name == "scores":
			if err := r.BeginArray(); err != nil {
				return err
			}
			for {
				has, err := r.HasNext()
				if err != nil {
					return err
				}
				if !has {
					break
				}
				if err := r.SkipValue(); err != nil {
					return err
				}
			}
			if err := r.EndArray(); err != nil {
				return err
			}
		case kind == xjson.BeginObject:
			if err := r.BeginObject(); err != nil {
				return err
			}
			for {
				has, err := r.HasNext()
				if err != nil {
					return err
				}
				if !has {
					break
				}
				if _, err := r.NextName(); err != nil {
					return err
				}
				if err := r.SkipValue(); err != nil {
					return err
				}
			}
			if err := r.EndObject(); err != nil {
				return err
			}
		default:
			if err := r.SkipValue(); err != nil {
				return err
			}
		}
	}
	return r.EndObject()
}

func BenchmarkStreamValue(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := xjson.NewReader(strings.NewReader(benchDoc))
		if err := r.StreamValue(io.Discard); err != nil {
			b.Fatalf("StreamValue: %v", err)
		}
	}
}
