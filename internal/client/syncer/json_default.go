//go:build !sonic

package syncer

import "github.com/goccy/go-json"

var jsonMarshal = json.Marshal
var jsonUnmarshal = json.Unmarshal
