package service

// 图生图记录的 prompt 前缀，历史列表靠它区分来源
const variantPromptPrefix = "[I2I] "

// ResolveModelID 把 UI 短名映射为上游模型 ID。未知值原样透传，
// 新模型 ID 不改代码也能直接用。
func ResolveModelID(model string) string {
	switch model {
	case "flux1", "":
		return "black-forest-labs/flux.2-flex"
	case "flux2":
		return "black-forest-labs/flux.2-pro"
	default:
		return model
	}
}

// DimensionsForRatio 宽高比到像素尺寸的固定映射，未识别的值按方图处理
func DimensionsForRatio(ratio string) (width, height int) {
	switch ratio {
	case "16:9":
		return 1024, 576
	case "3:4":
		return 768, 1024
	default:
		return 1024, 1024
	}
}

// ComposePrompt 风格标签拼进 prompt；style 为空或 "none" 时原样返回
func ComposePrompt(style, prompt string) string {
	if style == "" || style == "none" {
		return prompt
	}
	return style + " style. " + prompt
}
