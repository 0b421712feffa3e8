package integrity

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/reyesbrostec/deceAUM/internal/schema"
)

// Digest 对规范序列化的 UTF-8 字节计算 SHA-256，返回 64 位小写十六进制
func Digest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// ScheduleHash 排考块摘要
func ScheduleHash(s schema.Schedule) (string, error) {
	c, err := CanonicalSchedule(s)
	if err != nil {
		return "", err
	}
	return Digest(c), nil
}

// NormativaHash 规则块摘要
func NormativaHash(n schema.Normativa) (string, error) {
	c, err := CanonicalNormativa(n)
	if err != nil {
		return "", err
	}
	return Digest(c), nil
}

// Hashes 同时计算两个块的摘要
type Hashes struct {
	Schedule  string `json:"schedule_integrity_hash"`
	Normativa string `json:"normativa_hash"`
}

// Compute 计算文档两个块的摘要
func Compute(s schema.Schedule, n schema.Normativa) (Hashes, error) {
	sh, err := ScheduleHash(s)
	if err != nil {
		return Hashes{}, err
	}
	nh, err := NormativaHash(n)
	if err != nil {
		return Hashes{}, err
	}
	return Hashes{Schedule: sh, Normativa: nh}, nil
}
