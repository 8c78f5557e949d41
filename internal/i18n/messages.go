package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":              "Invalid request",
		"error.unauthorized":             "Unauthorized",
		"error.forbidden":                "You do not have permission to perform this action",
		"error.not_found":                "Resource not found",
		"error.internal_error":           "Internal server error",
		"error.too_many_requests":        "Too many requests, please try again later",
		"error.login_rate_limited":       "Too many login attempts, retry in %d seconds",
		"error.rate_limited":             "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiter unavailable, please try again later",
		"error.token_invalid":            "Session expired, please sign in again",
		"error.token_revoked":            "Session revoked, please sign in again",
		"error.jwt_secret_missing":       "Authentication is not configured",
		"error.auth_header_missing":      "Missing Authorization header",
		"error.auth_header_invalid":      "Malformed Authorization header",
		"error.user_id_invalid":          "Invalid user identity",
		"error.user_id_type_invalid":     "Unexpected user identity type",
		"error.content_id_invalid":       "Invalid content id",
		"error.content_not_found":        "Content not found",
		"error.invalid_status":           "Invalid status: must be one of DRAFT, REVIEW, PUBLISHED, ARCHIVED",
		"error.invalid_transition":       "This status change is not allowed",
		"error.invalid_content_type":     "Invalid content type",
		"error.title_required":           "Title is required",
		"error.slug_invalid":             "Slug may only contain lowercase letters, digits and hyphens",
		"error.slug_exists":              "Slug already exists",
		"error.content_not_editable":     "Only draft content can be edited by its authors",
		"error.content_has_doi":          "Content that has entered DOI registration cannot be deleted",
		"error.journal_id_invalid":       "Invalid journal id",
		"error.journal_not_found":        "Journal not found",
		"error.journal_slug_exists":      "Journal slug already exists",
		"error.invalid_review_type":      "Review item type must be content, journal or user",
		"error.review_item_not_found":    "Review item not found",
		"error.user_not_found":           "User not found",
		"error.email_invalid":            "Invalid email address",
		"error.email_exists":             "Email is already registered",
		"error.invalid_credentials":      "Invalid email or password",
		"error.user_disabled":            "Account is disabled",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.doi_not_configured":       "DOI registration is not configured",
		"error.doi_not_eligible":         "Only published content without a DOI can be registered",
		"error.upload_too_large":         "File exceeds the maximum upload size",
		"error.upload_invalid_type":      "Only PDF files are accepted",
		"error.upload_failed":            "File upload failed",
		"error.role_invalid":             "Invalid role",
		"error.role_builtin":             "Built-in roles cannot be deleted",
		"error.fetch_failed":             "Failed to load data",
		"error.save_failed":              "Failed to save changes",
		"error.delete_failed":            "Failed to delete",
		"error.content_update_failed":    "Failed to update content status",
		"error.password_weak":            "Password does not meet the policy",
		"error.password_old_invalid":     "Current password is incorrect",
		"error.login_failed":             "Sign in failed",
		"error.register_failed":          "Registration failed",
		"error.authz_update_failed":      "Failed to update role assignments",
		"content.transition.submit":      "Content submitted for review",
		"content.transition.approve":     "Content approved and published",
		"content.transition.reject":      "Content returned to draft",
		"content.transition.archive":     "Content archived",
		"content.transition.restore":     "Content restored to published",
		"content.transition.unchanged":   "Content status unchanged",
		"content.transition.override":    "Content status updated by administrator override",
		"review.approved":                "Item approved",
		"review.rejected":                "Item rejected",
		"review.no_change":               "No change applied to this item",
		"doi.registered":                 "DOI registered",
		"doi.in_progress":                "DOI registration already in progress",
		"email.content_status.subject":   "[%s] Status update: %s",
		"email.content_status.body":      "Hello,\n\nThe status of \"%s\" is now %s.\n\n%s\n",
		"content.status.draft":           "Draft",
		"content.status.review":          "In review",
		"content.status.published":       "Published",
		"content.status.archived":        "Archived",
	},
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "未登录或登录已失效",
		"error.forbidden":                "无权执行该操作",
		"error.not_found":                "资源不存在",
		"error.internal_error":           "服务器内部错误",
		"error.too_many_requests":        "请求过于频繁，请稍后再试",
		"error.login_rate_limited":       "登录尝试次数过多，请 %d 秒后再试",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":   "限流服务不可用，请稍后再试",
		"error.token_invalid":            "登录已过期，请重新登录",
		"error.token_revoked":            "登录状态已失效，请重新登录",
		"error.jwt_secret_missing":       "鉴权未配置",
		"error.auth_header_missing":      "缺少 Authorization 请求头",
		"error.auth_header_invalid":      "Authorization 请求头格式错误",
		"error.user_id_invalid":          "用户身份无效",
		"error.user_id_type_invalid":     "用户身份类型异常",
		"error.content_id_invalid":       "内容 ID 无效",
		"error.content_not_found":        "内容不存在",
		"error.invalid_status":           "状态无效：仅支持 DRAFT、REVIEW、PUBLISHED、ARCHIVED",
		"error.invalid_transition":       "不允许该状态变更",
		"error.invalid_content_type":     "内容类型无效",
		"error.title_required":           "标题不能为空",
		"error.slug_invalid":             "slug 仅支持小写字母、数字与连字符",
		"error.slug_exists":              "slug 已存在",
		"error.content_not_editable":     "作者仅可编辑草稿状态的内容",
		"error.content_has_doi":          "内容已进入 DOI 登记，不能删除",
		"error.journal_id_invalid":       "期刊 ID 无效",
		"error.journal_not_found":        "期刊不存在",
		"error.journal_slug_exists":      "期刊 slug 已存在",
		"error.invalid_review_type":      "审核类型仅支持 content、journal、user",
		"error.review_item_not_found":    "审核条目不存在",
		"error.user_not_found":           "用户不存在",
		"error.email_invalid":            "邮箱格式错误",
		"error.email_exists":             "邮箱已注册",
		"error.invalid_credentials":      "邮箱或密码错误",
		"error.user_disabled":            "账号已被禁用",
		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_require_upper":   "密码需包含大写字母",
		"error.password_require_lower":   "密码需包含小写字母",
		"error.password_require_number":  "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.doi_not_configured":       "未配置 DOI 登记",
		"error.doi_not_eligible":         "仅已发布且未登记 DOI 的内容可登记",
		"error.upload_too_large":         "文件超过上传大小限制",
		"error.upload_invalid_type":      "仅支持上传 PDF 文件",
		"error.upload_failed":            "文件上传失败",
		"error.role_invalid":             "角色无效",
		"error.role_builtin":             "内置角色不可删除",
		"error.fetch_failed":             "数据加载失败",
		"error.save_failed":              "保存失败",
		"error.delete_failed":            "删除失败",
		"error.content_update_failed":    "内容状态更新失败",
		"error.password_weak":            "密码不符合安全策略",
		"error.password_old_invalid":     "原密码错误",
		"error.login_failed":             "登录失败",
		"error.register_failed":          "注册失败",
		"error.authz_update_failed":      "角色分配更新失败",
		"content.transition.submit":      "内容已提交审核",
		"content.transition.approve":     "内容已审核通过并发布",
		"content.transition.reject":      "内容已退回草稿",
		"content.transition.archive":     "内容已归档",
		"content.transition.restore":     "内容已恢复发布",
		"content.transition.unchanged":   "内容状态未变化",
		"content.transition.override":    "管理员已强制更新内容状态",
		"review.approved":                "审核已通过",
		"review.rejected":                "审核已驳回",
		"review.no_change":               "该条目无状态变更",
		"doi.registered":                 "DOI 登记成功",
		"doi.in_progress":                "DOI 登记进行中",
		"email.content_status.subject":   "[%s] 状态更新：%s",
		"email.content_status.body":      "您好，\n\n《%s》的状态已更新为 %s。\n\n%s\n",
		"content.status.draft":           "草稿",
		"content.status.review":          "审核中",
		"content.status.published":       "已发布",
		"content.status.archived":        "已归档",
	},
}
