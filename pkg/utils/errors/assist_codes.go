package errors

// 问答服务代码: 20, FAQ 服务代码: 21 (业务服务范围 20-79)
// 错误码格式: AABBCCC
// - AA: 服务代码
// - BB: 类别代码
// - CCC: 序号

var (
	// 请求参数错误 (类别 01)
	ErrAssistInvalidRequest = Register(New(MakeCode(ServiceAssist, CategoryRequest, 1), 400, "Invalid request parameters", "请求参数无效"))
	ErrAssistEmptyQuestion  = Register(New(MakeCode(ServiceAssist, CategoryRequest, 2), 400, "Question cannot be empty", "问题不能为空"))
	ErrAssistInvalidFile    = Register(New(MakeCode(ServiceAssist, CategoryRequest, 3), 400, "Invalid document file", "文档文件无效"))

	// 查询相关错误
	ErrAssistQueryTimeout = Register(New(MakeCode(ServiceAssist, CategoryTimeout, 1), 408, "Query timeout", "查询超时"))
	ErrAssistQueryFailed  = Register(New(MakeCode(ServiceAssist, CategoryInternal, 1), 500, "Query failed", "查询失败"))
	ErrAssistNoResults    = Register(New(MakeCode(ServiceAssist, CategoryResource, 1), 404, "No relevant documents found", "未找到相关文档"))

	// 入库相关错误
	ErrAssistIndexFailed   = Register(New(MakeCode(ServiceAssist, CategoryInternal, 2), 500, "Document indexing failed", "文档索引失败"))
	ErrAssistExtractFailed = Register(New(MakeCode(ServiceAssist, CategoryInternal, 3), 500, "Document extraction failed", "文档解析失败"))
	ErrAssistEmbedFailed   = Register(New(MakeCode(ServiceAssist, CategoryInternal, 4), 500, "Embedding generation failed", "向量生成失败"))

	// 生成相关错误
	ErrAssistGenerateFailed = Register(New(MakeCode(ServiceAssist, CategoryInternal, 5), 500, "Answer generation failed", "答案生成失败"))

	// 服务相关错误 (类别 10 - Network)
	ErrAssistUnavailable = Register(New(MakeCode(ServiceAssist, CategoryNetwork, 1), 503, "Assistant service unavailable", "问答服务不可用"))
	ErrAssistStoreEmpty  = Register(New(MakeCode(ServiceAssist, CategoryNetwork, 2), 503, "Knowledge base is empty, index documents first", "知识库为空，请先索引文档"))
)

var (
	// FAQ 错误
	ErrFAQLoadFailed   = Register(New(MakeCode(ServiceFAQ, CategoryInternal, 1), 500, "Failed to load FAQ data", "FAQ 数据加载失败"))
	ErrFAQSaveFailed   = Register(New(MakeCode(ServiceFAQ, CategoryInternal, 2), 500, "Failed to save FAQ data", "FAQ 数据保存失败"))
	ErrFAQNotFound     = Register(New(MakeCode(ServiceFAQ, CategoryResource, 1), 404, "FAQ entry not found", "FAQ 条目不存在"))
	ErrPendingNotFound = Register(New(MakeCode(ServiceFAQ, CategoryResource, 2), 404, "Pending question not found", "待回答问题不存在"))

	// 经验等级不足：回答 FAQ 需要 3 年以上经验
	ErrExperienceRequired = Register(New(MakeCode(ServiceFAQ, CategoryPermission, 1), 403, "Answering requires at least 3 years of experience", "回答问题需要 3 年以上工作经验"))
)

var (
	// 用户服务错误
	ErrUserNotFound   = Register(New(MakeCode(ServiceUser, CategoryResource, 1), 404, "User not found", "用户不存在"))
	ErrUserExists     = Register(New(MakeCode(ServiceUser, CategoryConflict, 1), 409, "Username already taken", "用户名已被占用"))
	ErrLoginFailed    = Register(New(MakeCode(ServiceUser, CategoryAuth, 1), 401, "Incorrect username or password", "用户名或密码错误"))
	ErrAccessCode     = Register(New(MakeCode(ServiceUser, CategoryAuth, 2), 401, "Invalid access code", "访问码无效"))
	ErrAuthDisabled   = Register(New(MakeCode(ServiceUser, CategoryAuth, 3), 401, "Authentication is disabled", "认证已禁用"))
	ErrRegisterFailed = Register(New(MakeCode(ServiceUser, CategoryInternal, 1), 500, "User registration failed", "用户注册失败"))
)
