package treehash

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickStrings treats lists as a whole: the first non-empty one wins.
func pickStrings(cli, local, global []string) []string {
	switch {
	case len(cli) > 0:
		return cli
	case len(local) > 0:
		return local
	default:
		return global
	}
}

func strPtr(s string) *string { return &s }

func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolPtr(v bool) *bool { return &v }

func optInt64Ptr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
