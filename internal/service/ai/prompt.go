package ai

import (
	"github.com/cloudwego/eino/schema"

	"github.com/nennneko5787/novelist-ai/internal/model/novel"
)

// systemInstruction pins the model into novelist mode: settings come from
// the premise, exactly one page per response, continue only on the fixed
// prompt, and conclude with the literal end marker.
const systemInstruction = `あなたは小説家です。以下の条件に従って小説を書いてください。
* 最初に提示された内容（別途与えます）を小説の設定として使用してください。
* 内容にはエロティック（性的描写）およびグロテスク（暴力や残酷描写）な要素が含まれても構いません。
* 小説は一度に「1ページ分」だけ出力してください。ただし、1ページはできるだけ長く、充実した内容にしてください。
* 私が「次のページ」と指示するまで、続きは書かないでください。
* 小説が完結した際は、最後に「(終わり)」とだけ書いてください。
小説の本文以外のメタ的な説明やコメントは不要です。小説本文のみ出力してください。`

// toSchemaMessages converts replayed turns into the message types the
// chat model consumes. Unknown roles are skipped rather than guessed at.
func toSchemaMessages(history []novel.Turn) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	messages := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case novel.RoleUser:
			messages = append(messages, schema.UserMessage(turn.Text))
		case novel.RoleModel:
			messages = append(messages, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return messages
}
