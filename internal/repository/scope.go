package repository

import (
	"github.com/freightdesk-next/internal/constants"

	"gorm.io/gorm"
)

// Scope 类型化的数据范围谓词
// 按显式的范围类型（仓储方集合/供应商/客户）组合查询条件，
// 取代运行期以字符串键拼出来的动态列映射。
type Scope struct {
	Kind       string
	StorerKeys []string
	Supplier   string
	Client     string
}

// ScopeAll 不做范围限制
func ScopeAll() Scope {
	return Scope{Kind: constants.ScopeKindNone}
}

// ScopeByStorerKeys 按仓储方集合限制
func ScopeByStorerKeys(keys []string) Scope {
	return Scope{Kind: constants.ScopeKindStorer, StorerKeys: keys}
}

// ScopeBySupplier 按供应商限制
func ScopeBySupplier(code string) Scope {
	return Scope{Kind: constants.ScopeKindSupplier, Supplier: code}
}

// ScopeByClient 按客户限制
func ScopeByClient(code string) Scope {
	return Scope{Kind: constants.ScopeKindClient, Client: code}
}

// Apply 将范围谓词应用到查询上
func (s Scope) Apply(query *gorm.DB) *gorm.DB {
	if query == nil {
		return query
	}
	switch s.Kind {
	case constants.ScopeKindStorer:
		if len(s.StorerKeys) == 0 {
			// 空的仓储方集合意味着无可见数据
			return query.Where("1 = 0")
		}
		return query.Where("storer_key IN ?", s.StorerKeys)
	case constants.ScopeKindSupplier:
		return query.Where("supplier_code = ?", s.Supplier)
	case constants.ScopeKindClient:
		return query.Where("client_code = ?", s.Client)
	default:
		return query
	}
}
