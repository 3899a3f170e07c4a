package commands

const (
	_etc = "/usr/local/etc/com.github.moevm/grade-export"

	DEFAULT_RATING_CONFIG = _etc + "/rating.json"
)
