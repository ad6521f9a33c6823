package briefing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// 文档注释：输入校验（仅 API 边界使用）
// 背景：扫描引擎本身对缺失值全函数化处理；此处仅拒绝结构性非法输入（坐标越界、负预算、超长文本）。
func Validate(b Briefing) error {
	err := validate.Struct(b)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fe.Namespace()+":"+fe.Tag())
		}
		return fmt.Errorf("invalid briefing: %s", strings.Join(parts, ","))
	}
	return fmt.Errorf("invalid briefing: %w", err)
}
