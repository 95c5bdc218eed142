package parser

// unquote decodes a matched string literal, quotes included, into its value
func unquote(lexeme string) string {
	body := lexeme
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}

	result := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i+1 >= len(body) {
			result = append(result, ch)
			continue
		}
		i++ // skip backslash
		switch body[i] {
		case 'n':
			result = append(result, '\n')
		case 't':
			result = append(result, '\t')
		case 'r':
			result = append(result, '\r')
		case '"':
			result = append(result, '"')
		case '\\':
			result = append(result, '\\')
		default:
			// Unknown escape - keep the backslash
			result = append(result, '\\', body[i])
		}
	}
	return string(result)
}

// quote renders a string value back into source form
func quote(s string) string {
	result := make([]byte, 0, len(s)+2)
	result = append(result, '"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			result = append(result, '\\', 'n')
		case '\t':
			result = append(result, '\\', 't')
		case '\r':
			result = append(result, '\\', 'r')
		case '"':
			result = append(result, '\\', '"')
		case '\\':
			result = append(result, '\\', '\\')
		default:
			result = append(result, s[i])
		}
	}
	result = append(result, '"')
	return string(result)
}
