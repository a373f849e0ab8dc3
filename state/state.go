package state

// 房间状态, 只允许单向推进
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
	StatusClosed   Status = "closed"
)

// 状态转换表: waiting -> playing -> finished, waiting|playing -> closed
var transitions = map[Status][]Status{
	StatusWaiting: {StatusPlaying, StatusClosed},
	StatusPlaying: {StatusFinished, StatusClosed},
}

// CanTransition 判断从 from 到 to 的转换是否合法
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal 判断状态是否为终态
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusClosed
}
