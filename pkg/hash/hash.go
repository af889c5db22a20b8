// Package hash 提供基于 bcrypt 的密钥散列与校验工具。
package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword 对明文做 bcrypt 散列，用于离线生成 api_key_hash 配置值。
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash 校验明文与 bcrypt 散列是否匹配。
func CheckPasswordHash(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
