//go:build sonic

package syncer

import "github.com/bytedance/sonic"

var jsonMarshal = sonic.Marshal
var jsonUnmarshal = sonic.Unmarshal
