package model

import "github.com/google/uuid"

// ensureID 创建前补全 UUID 主键
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
