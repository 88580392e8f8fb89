package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON 尽力从模型输出中解出 JSON 对象。
// 依次尝试：直接解析 → 去掉 markdown 代码栅栏 → 截取首个 { 到最后一个 } 之间的子串。
func decodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if json.Unmarshal([]byte(s), v) == nil {
		return nil
	}

	stripped := stripCodeFence(s)
	if json.Unmarshal([]byte(stripped), v) == nil {
		return nil
	}

	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(stripped[start:end+1]), v) == nil {
			return nil
		}
	}

	return fmt.Errorf("no parseable JSON object in model output")
}

// stripCodeFence 去掉 ```json ... ``` 一类的代码栅栏标记
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
