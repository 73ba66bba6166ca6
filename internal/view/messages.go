package view

// User facing messages.
const (
	MsgGreeting       = "%s님, 안녕하세요!"
	MsgSubmitting     = "제출 중입니다..."
	MsgSubmitSuccess  = "제출 성공! 제출 ID: %d"
	MsgSubmitFailed   = "제출에 실패했습니다. 다시 시도해주세요."
	MsgWeightsWarning = ".pt 파일은 %s 이름으로 제출해야 합니다. 그래도 제출하시겠습니까?"
	MsgInvalidUpload  = ".zip 또는 .pt 파일만 제출할 수 있습니다."

	MsgForbidden  = "이 페이지에 접근할 권한이 없습니다. 관리자 계정으로 로그인해주세요."
	MsgLoadFailed = "데이터를 불러오는 중 오류가 발생했습니다."
	MsgEmpty      = "데이터가 없습니다."
	MsgLoading    = "불러오는 중…"

	MsgErrorPrefix = "오류: "

	MsgCreateSuccess           = "새로운 과제가 성공적으로 등록되었습니다."
	MsgCreateFailed            = "과제 등록에 실패했습니다."
	MsgDeleteConfirm           = "정말로 '%s' 과제를 삭제하시겠습니까?"
	MsgDeleteSuccess           = "과제가 성공적으로 삭제되었습니다."
	MsgDeleteFailed            = "과제 삭제에 실패했습니다. 해당 과제에 연결된 제출 기록이 있는지 확인해주세요."
	MsgLeaderboardToggleFailed = "리더보드 상태 변경에 실패했습니다."
	MsgSubmissionsToggleFailed = "제출 상태 변경에 실패했습니다."
	MsgScriptRequired          = "업로드할 파일을 선택해주세요."
	MsgScriptSuccessPrefix     = "✅ "
	MsgScriptFailedPrefix      = "❌ 업로드 실패: "
)
